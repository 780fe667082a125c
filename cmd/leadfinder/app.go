package main

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"leadfinder/cmd/internal/config"
	"leadfinder/cmd/internal/console"
	"leadfinder/cmd/internal/domain/sqlite"
	"leadfinder/cmd/internal/domain/sqlite/repository"
	"leadfinder/cmd/internal/infrastructure/aws/storage"
	"leadfinder/cmd/internal/infrastructure/cache"
	"leadfinder/cmd/internal/infrastructure/openai"
	"leadfinder/cmd/internal/infrastructure/pacer"
	"leadfinder/cmd/internal/infrastructure/scraper"
	"leadfinder/cmd/internal/logging"
	"leadfinder/cmd/internal/service"
)

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg    *config.Config
	out    *console.Console
	logger *log.Logger

	db    *gorm.DB
	redis *redis.Client
	cache *cache.Cache

	leads    *service.DefaultLeadService
	ai       *service.AIService
	finder   *service.FinderService
	exporter *service.ExportService
	caches   *service.CacheService

	closers []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, validate *validator.Validate, out *console.Console) (*app, error) {
	logger, logFile, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	a := &app{cfg: cfg, out: out, logger: logger, closers: []io.Closer{logFile}}

	// Init SQLite
	a.db, err = sqlite.Init(cfg.DatabasePath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	a.cache = cache.New(a.cacheStore(), cache.Options{Enabled: cfg.Cache.Enabled, TTL: cfg.Cache.TTL}, logger)

	// Getting repos
	companyRepo := repository.NewCompanyRepository(a.db)
	historyRepo := repository.NewHistoryRepository(a.db)

	// Getting services
	a.leads = service.NewLeadService(companyRepo, historyRepo, validate, logger)

	var llm service.Completer
	if cfg.AIEnabled() {
		llm = openai.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}
	a.ai = service.NewAIService(llm, a.cache, a.leads, pacer.Fixed(cfg.AIDelay), logger)

	scrapePacer := pacer.New(cfg.ScrapeDelayMin, cfg.ScrapeDelayMax)
	a.finder = service.NewFinderService(a.leads, a.ai, a.cache, scrapePacer, a.openScraper(scrapePacer), cfg.BatchSize, logger)

	var uploader service.Uploader
	if cfg.Export.S3Bucket != "" {
		s3, err := storage.NewS3Storage(ctx, cfg.Export.S3Region, cfg.Export.S3Bucket)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("initialize export storage: %w", err)
		}
		uploader = s3
	}
	a.exporter = service.NewExportService(cfg.OutputDir, historyRepo, uploader, logger)
	a.caches = service.NewCacheService(a.cache)

	return a, nil
}

func (a *app) cacheStore() cache.Store {
	if a.cfg.Cache.Backend != config.CacheBackendRedis {
		return cache.NewSQLStore(repository.NewCacheRepository(a.db))
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Cache.RedisAddr,
		Password: a.cfg.Cache.RedisPassword,
		DB:       a.cfg.Cache.RedisDB,
	})
	a.closers = append(a.closers, a.redis)
	return cache.NewRedisStore(a.redis, a.cfg.Cache.TTL)
}

// openScraper starts a fresh browser for every scraper run.
func (a *app) openScraper(p *pacer.Pacer) service.ScraperFactory {
	return func(ctx context.Context, source string) (service.Scraper, error) {
		browser, err := scraper.NewBrowser(ctx, scraper.BrowserOptions{
			Headless:   a.cfg.Browser.Headless,
			WindowSize: a.cfg.Browser.WindowSize,
			UserAgent:  a.cfg.Browser.UserAgent,
			RemoteURL:  a.cfg.Browser.RemoteURL,
		})
		if err != nil {
			return nil, err
		}

		switch source {
		case service.SourceYellowPages:
			return scraper.NewYellowPages(browser, p, a.logger), nil
		case service.SourceGoogleMaps:
			return scraper.NewGoogleMaps(browser, p, a.logger), nil
		default:
			_ = browser.Close()
			return nil, fmt.Errorf("no scraper registered for %q", source)
		}
	}
}

func (a *app) close() {
	if a.db != nil {
		if err := sqlite.Close(a.db); err != nil {
			a.logger.Errorf("failed to close database: %v", err)
		}
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}
