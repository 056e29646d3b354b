package lingo

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/hay-kot/lingo/internal/auth"
	"github.com/hay-kot/lingo/internal/core/config"
	"github.com/hay-kot/lingo/internal/core/history"
	"github.com/hay-kot/lingo/internal/core/kv"
	"github.com/hay-kot/lingo/internal/document"
	"github.com/hay-kot/lingo/internal/speech"
	"github.com/hay-kot/lingo/internal/store/jsonfile"
	"github.com/hay-kot/lingo/internal/store/memstore"
	"github.com/hay-kot/lingo/internal/store/sqlstore"
	"github.com/hay-kot/lingo/internal/translator"
	"github.com/hay-kot/lingo/pkg/executil"
)

// Build assembles a Service from cfg. The returned close function releases
// the storage backend.
func Build(ctx context.Context, cfg *config.Config, exec executil.Executor, log zerolog.Logger) (*Service, func() error, error) {
	store, closeFn, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	translators, err := buildTranslators(cfg)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	svc := New(Deps{
		History: history.NewStore(store, history.Limits{
			Recent: cfg.History.RecentLimit,
			Notes:  cfg.History.NotesLimit,
		}, log),
		Translators: translators,
		Detector:    translator.NewDetector(),
		Transcriber: buildTranscriber(cfg, log),
		Documents:   buildDocuments(cfg, exec, log),
		Auth:        buildAuth(cfg, store),
		CharLimit:   cfg.CharLimit,
	}, log)

	return svc, closeFn, nil
}

// OpenStore opens the key-value backend selected by storage.driver.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (kv.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return memstore.New(), noop, nil
	case config.DriverPostgres:
		s, err := sqlstore.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, s.Close, nil
	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
		return jsonfile.NewKVStore(cfg.StoreFile()).WithLogger(log), noop, nil
	}
}

func buildTranslators(cfg *config.Config) (*translator.Registry, error) {
	reg := translator.NewRegistry(cfg.Translation.Provider)

	providers := []translator.Provider{
		translator.NewMyMemoryProvider(cfg.Translation.MyMemoryURL, cfg.Credentials.MyMemoryEmail),
		translator.NewLocalProvider(cfg.Translation.LocalURL, cfg.Translation.LocalModel),
	}

	for _, p := range providers {
		cached, err := translator.NewCached(p, translator.CacheOptions{
			Size:          cfg.Translation.CacheSize,
			RatePerSecond: cfg.Translation.RateLimit,
			Burst:         cfg.Translation.Burst,
		})
		if err != nil {
			return nil, err
		}
		if err := reg.Register(cached); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// buildTranscriber returns nil when no configured transcriber is usable.
func buildTranscriber(cfg *config.Config, log zerolog.Logger) speech.Transcriber {
	var chain []speech.Transcriber
	for _, name := range cfg.Speech.Transcribers {
		switch name {
		case config.TranscriberWit:
			if cfg.Credentials.WitAIKey != "" {
				chain = append(chain, speech.NewWit(cfg.Speech.WitURL, cfg.Credentials.WitAIKey))
			}
		case config.TranscriberRev:
			if cfg.Credentials.RevAIKey != "" {
				chain = append(chain, speech.NewRev(cfg.Speech.RevURL, cfg.Credentials.RevAIKey))
			}
		case config.TranscriberVosk:
			chain = append(chain, speech.NewVosk(cfg.Speech.VoskURL))
		}
	}
	if len(chain) == 0 {
		return nil
	}
	return speech.NewChain(log, chain...)
}

func buildDocuments(cfg *config.Config, exec executil.Executor, log zerolog.Logger) *document.Router {
	router := document.NewRouter(log).
		Handle(document.PlainText{}, ".txt", ".md").
		Handle(document.HTML{}, ".html", ".htm")

	if cfg.Document.PDFToTextPath != "" {
		pdf := document.NewPDFToText(exec, cfg.Document.PDFToTextPath)
		if err := pdf.Available(); err == nil {
			router.Handle(pdf, ".pdf")
		} else {
			log.Debug().Err(err).Msg("pdftotext unavailable")
		}
	}

	if cfg.Credentials.OCRSpaceKey != "" {
		ocr := document.NewOCRSpace(cfg.Document.OCRURL, cfg.Credentials.OCRSpaceKey, cfg.Document.OCRLanguage)
		router.Handle(ocr, ".pdf", ".png", ".jpg", ".jpeg")
	}

	return router
}

func buildAuth(cfg *config.Config, store kv.Store) auth.Provider {
	if cfg.Auth.Provider == config.AuthFirebase {
		return auth.NewFirebase(cfg.Auth.FirebaseURL, cfg.Credentials.FirebaseAPIKey, store)
	}
	return auth.NewLocal(store)
}
