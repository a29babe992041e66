package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"

	"github.com/local/decknotes/internal/ai"
	"github.com/local/decknotes/internal/annotate"
	"github.com/local/decknotes/internal/assemble"
	"github.com/local/decknotes/internal/cache"
	"github.com/local/decknotes/internal/compose"
	cfgpkg "github.com/local/decknotes/internal/config"
	"github.com/local/decknotes/internal/extract"
	"github.com/local/decknotes/internal/filetype"
	logpkg "github.com/local/decknotes/internal/logger"
	"github.com/local/decknotes/internal/metrics"
	"github.com/local/decknotes/internal/pages"
	"github.com/local/decknotes/internal/pipeline"
	"github.com/local/decknotes/internal/render"
	"github.com/local/decknotes/internal/source"
	"github.com/local/decknotes/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := cfgpkg.FromEnv()

	_ = logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logpkg.Close()

	metrics.Init()
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("annotation run failed")
	}
	log.Info().Dur("duration", time.Since(start)).Str("output", cfg.Job.OutputPath).Msg("annotation run complete")
	fmt.Printf("saved annotated deck to %s\n", cfg.Job.OutputPath)
}

func run(ctx context.Context, cfg cfgpkg.Config) error {
	if cfg.Job.InputRef == "" || cfg.Job.OutputPath == "" {
		return fmt.Errorf("INPUT_PDF and OUTPUT_PDF are required")
	}

	// Preflight: the renderer must be usable before any page is touched.
	renderer := render.NewNodeRenderer(cfg.Renderer.NodeBin, cfg.Renderer.Script, cfg.Renderer.Timeout)
	if err := renderer.CheckInstallation(); err != nil {
		return err
	}

	inputPath, cleanup, err := source.Resolve(ctx, cfg.Job.InputRef)
	if err != nil {
		return fmt.Errorf("resolve input %s: %w", cfg.Job.InputRef, err)
	}
	defer cleanup()

	if err := filetype.EnsurePDF(inputPath); err != nil {
		return err
	}

	extractor, err := extract.Open(inputPath)
	if err != nil {
		return err
	}
	defer extractor.Close()

	total := extractor.PageCount()
	selection, err := pages.ParseSelection(cfg.Job.Pages, total)
	if err != nil {
		return err
	}
	log.Info().
		Str("input", cfg.Job.InputRef).
		Int("total_pages", total).
		Str("pages", cfg.Job.Pages).
		Str("side", cfg.Job.Side).
		Float64("margin_ratio", cfg.Job.MarginRatio).
		Bool("force", cfg.Job.Force).
		Msg("starting annotation run")

	dims, err := api.PageDimsFile(inputPath)
	if err != nil {
		return fmt.Errorf("read page dimensions: %w", err)
	}

	scratch := filepath.Join(os.TempDir(), "decknotes_"+uuid.New().String())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	deps := pipeline.Dependencies{
		Extractor: extractor,
		Generator: annotate.NewGenerator(ai.NewOpenAIClient(), annotate.Options{
			Model:           cfg.Generator.Model,
			MaxOutputTokens: cfg.Generator.MaxOutputTokens,
			ReasoningEffort: cfg.Generator.ReasoningEffort,
			Verbosity:       cfg.Generator.Verbosity,
			MaxAttempts:     cfg.Generator.MaxAttempts,
			InitialBackoff:  cfg.Generator.InitialBackoff,
			MaxBackoff:      cfg.Generator.MaxBackoff,
		}),
		Renderer: renderer,
		Cache:    cache.New(cfg.Job.CacheRoot),
		Composer: compose.NewCompositor(inputPath, scratch),
		Sink:     assemble.New(cfg.Job.OutputPath),
		PageDims: func(page int) (float64, float64, error) {
			if page < 1 || page > len(dims) {
				return 0, 0, fmt.Errorf("page %d out of range (document has %d pages)", page, len(dims))
			}
			return dims[page-1].Width, dims[page-1].Height, nil
		},
	}

	opts := pipeline.Options{
		CourseName:  cfg.Job.CourseName,
		DocPath:     cfg.Job.InputRef,
		Side:        cfg.Job.Side,
		MarginRatio: cfg.Job.MarginRatio,
		Selection:   selection,
		Force:       cfg.Job.Force,
	}
	if err := pipeline.Run(ctx, deps, opts); err != nil {
		return err
	}

	if cfg.Publish.Bucket != "" {
		if err := publish(ctx, cfg); err != nil {
			return fmt.Errorf("publish output: %w", err)
		}
	}
	return nil
}

// publish uploads the finished document to S3.
func publish(ctx context.Context, cfg cfgpkg.Config) error {
	cli, err := storage.NewS3Client(ctx, cfg.Publish.Bucket)
	if err != nil {
		return err
	}
	key := filepath.Base(cfg.Job.OutputPath)
	if p := strings.Trim(cfg.Publish.Prefix, "/"); p != "" {
		key = p + "/" + key
	}
	return cli.UploadFile(ctx, key, cfg.Job.OutputPath, "application/pdf")
}
