// Command overlap scores a corpus of reference/candidate pairs with ROUGE and BLEU.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/braintrustdata/overlap-go/config"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "overlap",
		Short:        "Score generated text against references with ROUGE and BLEU",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFiles, _ := cmd.Flags().GetStringSlice("env-file")
			return config.LoadDotEnv(envFiles...)
		},
	}
	root.PersistentFlags().StringSlice("env-file", nil, "Load environment from these files (default .env)")

	root.AddCommand(
		scoreCmd(),
		runsCmd(),
	)
	return root
}
