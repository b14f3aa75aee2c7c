package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/port"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/ffmpeg"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/report"
	"github.com/tharunkumardeveloper/truthlensai/internal/pipeline"
	"github.com/tharunkumardeveloper/truthlensai/pkg/logger"
	"go.uber.org/zap"
)

var pipelineSeekTimeout = pipeline.DefaultSamplerConfig().SeekTimeout

type runSettings struct {
	outDir    string
	renderers []port.ReportRenderer
	opts      pipeline.Options
	opener    port.MediaOpener
	logger    *zap.Logger
}

func settingsFromFlags(cmd *cobra.Command) (runSettings, error) {
	flags := cmd.Flags()
	outDir, _ := flags.GetString("out")
	formats, _ := flags.GetString("format")
	fast, _ := flags.GetBool("fast")
	level, _ := flags.GetString("log-level")
	ffmpegPath, _ := flags.GetString("ffmpeg")
	ffprobePath, _ := flags.GetString("ffprobe")
	seekTimeout, _ := flags.GetDuration("seek-timeout")

	log, err := logger.New(level)
	if err != nil {
		return runSettings{}, fmt.Errorf("init logger: %w", err)
	}

	renderers, err := report.ForFormats(strings.Split(formats, ","))
	if err != nil {
		return runSettings{}, err
	}

	samplerCfg := pipeline.DefaultSamplerConfig()
	samplerCfg.SeekTimeout = seekTimeout

	opts := pipeline.Options{Sampler: samplerCfg}
	if fast {
		opts.Sleep = pipeline.NoSleep
	}

	return runSettings{
		outDir:    outDir,
		renderers: renderers,
		opts:      opts,
		opener:    ffmpeg.NewOpener(ffmpegPath, ffprobePath, log),
		logger:    log,
	}, nil
}

// runLocal submits the input to a fresh controller, streams progress to out and writes
// the finished artifacts.
func runLocal(ctx context.Context, out io.Writer, s runSettings, demos port.DemoCatalog, input pipeline.MediaInput) error {
	defer s.logger.Sync()

	ctrl := pipeline.New(s.opener, demos, s.opts, s.logger)
	defer ctrl.Clear()

	updates, unsubscribe := ctrl.Subscribe(1)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for state := range updates {
			if state.Phase == entity.PhaseRunning {
				fmt.Fprintf(out, "progress %5.1f%%  frames %d\n", state.Progress, len(state.Frames))
			}
		}
	}()

	if err := ctrl.SubmitMedia(ctx, input); err != nil {
		unsubscribe()
		<-printed
		return err
	}
	if err := ctrl.StartRun(ctx); err != nil {
		unsubscribe()
		<-printed
		return err
	}
	state, err := ctrl.Wait(ctx)
	unsubscribe()
	<-printed
	if err != nil {
		return err
	}

	rep, err := ctrl.Synthesize(pipeline.ReportOptions{Rand: s.opts.Rand})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	fmt.Fprintf(out, "%s  confidence %.1f%%  %s\n",
		state.Result.VerdictLabel(), state.Result.ConfidencePercent, pipeline.RiskLabel(state.Result.ConfidencePercent))

	for _, r := range s.renderers {
		var buf bytes.Buffer
		if err := r.Render(&buf, rep); err != nil {
			return fmt.Errorf("render %s: %w", r.Extension(), err)
		}
		path := filepath.Join(s.outDir, rep.FileBase+r.Extension())
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(out, "wrote %s\n", path)
	}

	archivePath := filepath.Join(s.outDir, rep.FileBase+"_frames.zip")
	if err := ffmpeg.NewFrameArchiver().CreateArchive(ctx, state.Frames, archivePath); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", archivePath)
	return nil
}
