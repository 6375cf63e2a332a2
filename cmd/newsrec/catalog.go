package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/logging"
	"github.com/rushteam/newsrec/store"
)

var catalogDB string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the SQLite news catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <news.csv|news.tsv>",
	Short: "Import news metadata into the SQLite catalog",
	Long: `Import news metadata into the SQLite catalog at --db (default
catalog.sqlite_path). Files ending in .tsv are read as headerless MIND news
TSV; anything else as CSV with a header. Existing ids are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

func init() {
	catalogImportCmd.Flags().StringVar(&catalogDB, "db", "", "SQLite database path")
	catalogCmd.AddCommand(catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	path := catalogDB
	if path == "" {
		path = appConfig.Catalog.SQLitePath
	}
	if path == "" {
		return fmt.Errorf("no catalog database: pass --db or set catalog.sqlite_path")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var docs []corpus.Document
	if strings.EqualFold(filepath.Ext(args[0]), ".tsv") {
		docs, err = corpus.ParseNewsTSV(f)
	} else {
		docs, err = corpus.ParseNewsCSV(f)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	catalog, err := store.OpenSQLiteCatalog(path)
	if err != nil {
		return err
	}
	defer catalog.Close()

	ctx := cmd.Context()
	inserted, err := catalog.Import(ctx, docs)
	if err != nil {
		return err
	}
	total, err := catalog.Count(ctx)
	if err != nil {
		return err
	}
	logger := logging.With("catalog")
	logger.Info().
		Str("db", path).
		Int("parsed", len(docs)).
		Int("inserted", inserted).
		Int("total", total).
		Msg("catalog import finished")
	return writeJSON(cmd.OutOrStdout(), map[string]int{"parsed": len(docs), "inserted": inserted, "total": total})
}
