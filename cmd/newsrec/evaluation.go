package main

import (
	"os"

	"github.com/spf13/cobra"
)

var evaluationCmd = &cobra.Command{
	Use:   "evaluation",
	Short: "Print the offline evaluation table and the active threshold",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := newRuntime(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer rt.Close()

		resp, err := rt.svc.Evaluation()
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, resp)
	},
}

func init() {
	rootCmd.AddCommand(evaluationCmd)
}
