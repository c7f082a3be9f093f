package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Generate a wrapper without writing it, reporting any error",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		opts, err := readOptions(cmd, false)
		if err != nil {
			return err
		}

		if _, err := runGenerate(opts, nil, false); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "OK")

		return nil
	},
}

func init() {
	addGenerateFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}
