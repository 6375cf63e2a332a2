package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [keyword...]",
	Short: "Search news titles by keyword",
	Long: `Case-insensitive substring search over news titles, in corpus order.
Without a keyword the first --limit articles are listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx, appConfig)
		if err != nil {
			return err
		}
		defer rt.Close()

		docs, err := rt.svc.Search(ctx, strings.Join(args, " "), searchLimit)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, docs)
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 20, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
