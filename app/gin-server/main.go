package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/yoockh/yoorecord/config"
	"github.com/yoockh/yoorecord/internal/api/handlers"
	"github.com/yoockh/yoorecord/internal/api/middleware"
	"github.com/yoockh/yoorecord/internal/api/routes"
	"github.com/yoockh/yoorecord/internal/api/templates"
	"github.com/yoockh/yoorecord/internal/cache"
	"github.com/yoockh/yoorecord/internal/logger"
	"github.com/yoockh/yoorecord/internal/providers/stt"
	fsrepo "github.com/yoockh/yoorecord/internal/repositories/fs"
	mongorepo "github.com/yoockh/yoorecord/internal/repositories/mongo"
	pgrepo "github.com/yoockh/yoorecord/internal/repositories/postgres"
	"github.com/yoockh/yoorecord/internal/services"
	"github.com/yoockh/yoorecord/internal/storage"
	"github.com/yoockh/yoorecord/internal/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config error")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var gcpOpts []option.ClientOption
	if cfg.GCPCredentialsFile != "" {
		gcpOpts = append(gcpOpts, option.WithCredentialsFile(cfg.GCPCredentialsFile))
	}

	blobs := storage.NewLocalBlobStore(cfg.UploadDir, nil)

	// Transcript store
	var transcripts services.TranscriptRepository
	switch cfg.TranscriptStore {
	case "mongo":
		client, err := config.OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.WithError(err).Fatal("MongoDB init error")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		db := client.Database(cfg.MongoDB)
		if err := config.EnsureMongoIndexes(ctx, db); err != nil {
			log.WithError(err).Fatal("MongoDB index error")
		}
		transcripts = mongorepo.NewTranscriptRepo(db, log)
		log.Info("MongoDB connected")
	default:
		transcripts = fsrepo.NewTranscriptRepo(cfg.TranscriptDir, log)
	}

	// Catalog (optional)
	var catalog pgrepo.RecordingRepository
	if cfg.PostgresURI != "" {
		db, err := config.OpenPostgres(cfg.PostgresURI)
		if err != nil {
			log.WithError(err).Fatal("PostgreSQL init error")
		}
		if err := pgrepo.Migrate(db); err != nil {
			log.WithError(err).Fatal("PostgreSQL migrate error")
		}
		catalog = pgrepo.NewRecordingRepo(db)
		log.Info("PostgreSQL connected")
	}

	// Listing cache (optional)
	var listCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb, err := config.OpenRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Fatal("Redis init error")
		}
		defer func() { _ = rdb.Close() }()
		listCache = cache.NewRedisCache(rdb, "yoorecord:")
		log.Info("Redis connected")
	}

	// Off-site mirror (optional)
	var mirror storage.Uploader
	if cfg.GCSBucket != "" {
		up, err := storage.NewGCSUploader(ctx, cfg.GCSBucket, cfg.GCSPrefix, gcpOpts...)
		if err != nil {
			log.WithError(err).Fatal("GCS init error")
		}
		defer func() { _ = up.Close() }()
		mirror = up
	}

	// Transcription engine (optional)
	var transcriber services.Transcriber
	if cfg.Transcription.Enabled {
		provider, err := newProvider(ctx, cfg.Transcription, gcpOpts)
		if err != nil {
			log.WithError(err).Fatal("STT init error")
		}
		defer func() { _ = provider.Close() }()

		pool := &workers.TranscribePool{
			STT: provider,
			Options: stt.Options{
				Language: cfg.Transcription.Language,
				Model:    cfg.Transcription.Model,
				Device:   cfg.Transcription.Device,
			},
			NumWorkers: cfg.Transcription.Workers,
			QueueSize:  cfg.Transcription.QueueSize,
			Timeout:    cfg.Transcription.Timeout,
			Logger:     log,
		}
		// outlives the signal context so in-flight uploads finish during shutdown
		if err := pool.Start(context.Background()); err != nil {
			log.WithError(err).Fatal("transcribe pool start error")
		}
		defer pool.Stop()
		transcriber = pool
		log.WithField("provider", cfg.Transcription.Provider).Info("transcription enabled")
	}

	var src services.RecordSource
	switch cfg.EffectiveRecordSource() {
	case config.SourceTranscripts:
		src = services.TranscriptSource{Blobs: blobs, Transcripts: transcripts}
	case config.SourceCatalog:
		src = services.CatalogSource{Blobs: blobs, Repo: catalog}
	default:
		src = services.BlobSource{Blobs: blobs}
	}
	log.WithField("record_source", src.Name()).Info("record source selected")

	// Services
	records := services.NewRecordService(src, listCache, cfg.CacheTTL, log)
	ingest := services.NewIngestService(cfg.Transcription, services.IngestDeps{
		Blobs:       blobs,
		Transcripts: transcripts,
		Transcriber: transcriber,
		Catalog:     catalog,
		Mirror:      mirror,
		Records:     records,
		Logger:      log,
	})
	export := services.NewExportService(blobs, log)

	// Handlers
	deps := routes.Deps{
		Audio:  handlers.NewAudioHandler(ingest, blobs, cfg.MaxUploadBytes),
		Export: handlers.NewExportHandler(export),
		Search: handlers.NewSearchHandler(records, nil),
	}
	if cfg.Transcription.Enabled {
		deps.Transcript = handlers.NewTranscriptHandler(services.NewTranscriptService(transcripts))
	}

	tmpl, err := templates.Load()
	if err != nil {
		log.WithError(err).Fatal("template error")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.SetHTMLTemplate(tmpl)
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}

func newProvider(ctx context.Context, tc config.TranscriptionConfig, gcpOpts []option.ClientOption) (stt.Provider, error) {
	switch tc.Provider {
	case "google":
		return stt.NewGoogleSpeech(ctx, gcpOpts...)
	default:
		return stt.NewCommand(tc.Command)
	}
}
