package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"dropbot/api"
	"dropbot/archive"
	"dropbot/config"
	"dropbot/content"
	"dropbot/history"
	"dropbot/importer"
	"dropbot/kafka"
	"dropbot/pipeline"
	"dropbot/raindrop"
	"dropbot/summarize"
	"dropbot/tags"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if cfg == nil {
		// Help was shown, exit gracefully
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Remote bookmark service
	bookmarks := raindrop.NewClient(cfg.RaindropBaseURL, cfg.RaindropToken)

	// Optional Redis page cache
	var pageCache *redis.Client
	if cfg.RedisAddr != "" {
		pageCache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		log.Printf("Page cache enabled (redis at %s)", cfg.RedisAddr)
	}

	// Optional YouTube description fallback for video bookmarks
	var yt *youtube.Service
	if cfg.YouTubeAPIKey != "" {
		yt, err = youtube.NewService(ctx, option.WithAPIKey(cfg.YouTubeAPIKey))
		if err != nil {
			log.Printf("Warning: YouTube client unavailable: %v", err)
			yt = nil
		}
	}

	resolver := content.NewResolver(nil, pageCache, yt)

	// Tag normalization, with the optional stoplist
	var stoplist *tags.Stoplist
	if cfg.StoplistPath != "" {
		stoplist, err = tags.LoadStoplist(cfg.StoplistPath)
		if err != nil {
			log.Fatalf("failed to load stoplist: %v", err)
		}
		log.Printf("Loaded %d stoplisted tag(s)", len(stoplist.Terms))
	}
	extractor := tags.NewExtractor(cfg.CohereAPIKey, cfg.CohereModel, tags.NewNormalizer(stoplist))

	// Summarization is optional: without a key, summary requests degrade
	// per the pipeline's summary failure rules.
	var summarizer pipeline.Summarizer
	if cfg.GeminiAPIKey != "" {
		s, err := summarize.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("failed to initialize summarizer: %v", err)
		}
		summarizer = s
	} else {
		log.Printf("Warning: GEMINI_API_KEY not set, summarization disabled")
	}

	// Processing history
	store, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		log.Fatalf("failed to open history store: %v", err)
	}
	defer store.Close()
	log.Printf("History store ready at %s", cfg.HistoryDBPath)

	orchestrator := pipeline.New(bookmarks, resolver, extractor, summarizer, store, pipeline.Options{
		Workers:   cfg.Workers,
		EngineRPS: cfg.EngineRPS,
	})

	// Optional S3 run archive
	if cfg.S3Bucket != "" {
		archiver, err := archive.New(ctx, archive.Config{
			Bucket:       cfg.S3Bucket,
			Prefix:       cfg.S3Prefix,
			Region:       cfg.S3Region,
			Profile:      cfg.S3Profile,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			log.Printf("Warning: failed to init S3 archiver: %v (archiving disabled)", err)
		} else {
			orchestrator.AddObserver(archiver)
			log.Printf("Run archive enabled (bucket %s)", cfg.S3Bucket)
		}
	}

	// Optional Kafka trigger
	if len(cfg.KafkaBrokers) > 0 {
		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:   cfg.KafkaBrokers,
			Topic:     cfg.KafkaTopic,
			GroupID:   cfg.KafkaGroupID,
			Processor: orchestrator,
		})
		if err != nil {
			log.Fatalf("failed to create Kafka consumer: %v", err)
		}
		if err := consumer.Start(ctx); err != nil {
			log.Fatalf("failed to start Kafka consumer: %v", err)
		}
		defer consumer.Close()
	}

	// Feed import, with duplicate detection when Redis is available
	var linkFilter *importer.LinkFilter
	if pageCache != nil {
		linkFilter = importer.NewLinkFilter(pageCache)
	}
	feedImporter := importer.New(bookmarks, linkFilter)

	server := api.NewServer(orchestrator, store, bookmarks, feedImporter)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.NewRouter(),
	}

	go func() {
		log.Printf("Starting API server on %s", httpServer.Addr)
		log.Println("API endpoints available:")
		log.Println("  GET  /api/health")
		log.Println("  GET  /api/bookmarks")
		log.Println("  POST /api/bookmarks/import")
		log.Println("  POST /api/process")
		log.Println("  POST /api/process-all")
		log.Println("  GET  /api/history")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
