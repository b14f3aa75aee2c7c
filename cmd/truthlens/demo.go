package main

import (
	"github.com/spf13/cobra"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/demo"
	"github.com/tharunkumardeveloper/truthlensai/internal/pipeline"
)

var demoCmd = &cobra.Command{
	Use:   "demo asset-id",
	Short: "Analyze a bundled demo asset (deepfake-video, stego-image)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settingsFromFlags(cmd)
		if err != nil {
			return err
		}

		catalogPath, _ := cmd.Flags().GetString("catalog")
		catalog, err := demo.LoadCatalog(catalogPath)
		if err != nil {
			return err
		}

		return runLocal(cmd.Context(), cmd.OutOrStdout(), s, catalog, pipeline.DemoInput{AssetID: args[0]})
	},
}

func init() {
	demoCmd.Flags().String("catalog", "", "YAML demo catalog (default: built-in assets)")
	rootCmd.AddCommand(demoCmd)
}
