package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "truthlens",
	Short: "Sample and analyze media locally",
	Long: strings.TrimSpace(`
Runs the TruthLens sampling and analysis pipeline on a local file or a bundled demo asset,
then writes the report and the sampled thumbnails to the output directory.
    `),
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("out", "o", ".", "Directory the report and thumbnail archive are written to")
	rootCmd.PersistentFlags().StringP("format", "f", "markdown", "Comma separated report formats (markdown, html)")
	rootCmd.PersistentFlags().Bool("fast", false, "Skip the artificial pipeline delays")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level")
	rootCmd.PersistentFlags().String("ffmpeg", "ffmpeg", "Path to the ffmpeg binary")
	rootCmd.PersistentFlags().String("ffprobe", "ffprobe", "Path to the ffprobe binary")
	rootCmd.PersistentFlags().Duration("seek-timeout", pipelineSeekTimeout, "Upper bound for a single seek")
}
