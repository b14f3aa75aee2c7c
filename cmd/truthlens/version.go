package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tharunkumardeveloper/truthlensai/internal/pipeline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", pipeline.ProductName, pipeline.ProductVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
