package main

import (
	"fmt"
	"mime"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tharunkumardeveloper/truthlensai/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze file",
	Short: "Analyze a local video or image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settingsFromFlags(cmd)
		if err != nil {
			return err
		}

		path := args[0]
		mimeType, _ := cmd.Flags().GetString("mime")
		if mimeType == "" {
			mimeType = mime.TypeByExtension(filepath.Ext(path))
		}
		if mimeType == "" {
			return fmt.Errorf("%w: cannot infer mime type of %s, pass --mime", pipeline.ErrUnsupportedMedia, path)
		}

		input := pipeline.FileInput{Name: filepath.Base(path), MIMEType: mimeType, Path: path}
		return runLocal(cmd.Context(), cmd.OutOrStdout(), s, nil, input)
	},
}

func init() {
	analyzeCmd.Flags().String("mime", "", "Declared mime type (default: inferred from the extension)")
	rootCmd.AddCommand(analyzeCmd)
}
