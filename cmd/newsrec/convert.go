package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/logging"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.tsv>...",
	Short: "Convert MIND TSV files to CSV with named columns",
	Long: `Convert headerless MIND TSV files to CSV next to the input.
news.tsv gets the news columns; any other file gets the behaviors columns.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.With("convert")
		for _, path := range args {
			out, err := corpus.ConvertTSV(path)
			if err != nil {
				return fmt.Errorf("convert %s: %w", path, err)
			}
			logger.Info().Str("input", path).Str("output", out).Msg("converted")
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
