package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/newsrec/logging"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or seed the reading history store",
}

var historyAppendCmd = &cobra.Command{
	Use:   "append <user-id> <news-id>...",
	Short: "Append read articles to a user's history",
	Long: `Append news ids to a user's reading history. Only useful with the redis
backend: the memory backend does not outlive the command.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.History.Backend != "redis" {
			return fmt.Errorf("history append needs history.backend=redis (got %q)", appConfig.History.Backend)
		}
		ctx := cmd.Context()
		_, hs, closeFn, err := openStores(ctx, appConfig)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := hs.AppendHistory(ctx, args[0], args[1:]...); err != nil {
			return err
		}
		logger := logging.With("history")
		logger.Info().Str("user_id", args[0]).Int("appended", len(args)-1).Msg("history updated")
		return nil
	},
}

var historyLimit int

var historyShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Print a user's stored history, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, hs, closeFn, err := openStores(ctx, appConfig)
		if err != nil {
			return err
		}
		defer closeFn()

		ids, err := hs.History(ctx, args[0], historyLimit)
		if err != nil {
			return err
		}
		if ids == nil {
			ids = []string{}
		}
		return writeJSON(cmd.OutOrStdout(), ids)
	},
}

func init() {
	historyShowCmd.Flags().IntVar(&historyLimit, "limit", 0, "most recent items to show (0 = all)")
	historyCmd.AddCommand(historyAppendCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
