package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/config"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/demo"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/email"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/ffmpeg"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/metrics"
	miniostorage "github.com/tharunkumardeveloper/truthlensai/internal/infra/minio"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/postgres"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/rabbitmq"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/report"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/tracing"
	"github.com/tharunkumardeveloper/truthlensai/internal/pipeline"
	"github.com/tharunkumardeveloper/truthlensai/internal/usecase"
	"github.com/tharunkumardeveloper/truthlensai/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting truthlens-analysis-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:     cfg.MinIOEndpoint,
		AccessKey:    cfg.MinIOAccessKey,
		SecretKey:    cfg.MinIOSecretKey,
		UseSSL:       cfg.MinIOUseSSL,
		MediaBucket:  cfg.MinIOMediaBucket,
		ReportBucket: cfg.MinIOReportBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	demos, err := demo.LoadCatalog(cfg.DemoCatalog)
	fatalOnErr(err, "load demo catalog")

	renderers, err := report.ForFormats(cfg.ReportFormats)
	fatalOnErr(err, "configure report formats")

	repo := postgres.NewRunRepository(pool)
	opener := ffmpeg.NewOpener(cfg.FFmpegPath, cfg.FFprobePath, log)
	archiver := ffmpeg.NewFrameArchiver()
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	samplerCfg := pipeline.DefaultSamplerConfig()
	samplerCfg.SeekTimeout = cfg.SeekTimeout
	samplerCfg.ThumbWidth = cfg.ThumbWidth
	samplerCfg.ThumbHeight = cfg.ThumbHeight
	samplerCfg.JPEGQuality = cfg.JPEGQuality

	consumerCfg := rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQRequestQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}

	var uc *usecase.AnalyzeMediaUseCase
	consumer, err := rabbitmq.NewConsumer(consumerCfg, func(ctx context.Context, body []byte) error {
		return uc.Execute(ctx, body)
	}, log)
	fatalOnErr(err, "create consumer")
	defer consumer.Close()

	pub, err := rabbitmq.NewPublisher(consumer.Connection(), cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	uc = usecase.NewAnalyzeMediaUseCase(
		repo, storage, opener, demos, archiver, renderers,
		rabbitmq.NewStatusPublisher(pub), rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ), notifier,
		log,
		usecase.AnalyzeMediaConfig{
			TempDir:    cfg.TempDir,
			MaxRetries: cfg.MaxRetries,
			Pipeline: pipeline.Options{
				Sampler:        samplerCfg,
				DeepfakeMarker: cfg.DeepfakeMarker,
				GenuineMarker:  cfg.GenuineMarker,
			},
		},
	)

	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("truthlens-analysis-service started, consuming messages",
		zap.Strings("report_formats", cfg.ReportFormats),
		zap.Int("workers", cfg.WorkerCount),
	)

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	log.Info("truthlens-analysis-service stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
