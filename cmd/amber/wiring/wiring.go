// Package wiring constructs the engine's component graph from resolved
// configuration. Every amber subcommand that touches storage goes through
// these builders so provider selection lives in one place.
package wiring

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/amberhq/amber/pkg/cache"
	"github.com/amberhq/amber/pkg/cache/local"
	"github.com/amberhq/amber/pkg/config"
	"github.com/amberhq/amber/pkg/dotdir"
	"github.com/amberhq/amber/pkg/embeddings"
	embeddingutils "github.com/amberhq/amber/pkg/embeddings/utils"
	"github.com/amberhq/amber/pkg/eventstream"
	eventstreamutils "github.com/amberhq/amber/pkg/eventstream/utils"
	"github.com/amberhq/amber/pkg/extract"
	"github.com/amberhq/amber/pkg/storage"
	"github.com/amberhq/amber/pkg/storage/postgres"
	"github.com/amberhq/amber/pkg/storage/sqlite"
	"github.com/amberhq/amber/pkg/tiered"
	"github.com/amberhq/amber/pkg/vector"
	vectorutils "github.com/amberhq/amber/pkg/vector/utils"
)

// LoadConfig resolves configuration from defaults, config.toml in the
// resolved .amber/ directory, and AMBER_ environment variables. An empty
// configDir falls back to ./.amber/ then ~/.amber/.
func LoadConfig(configDir string) (*config.Config, error) {
	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, err
	}

	v, err := config.InitViper(dir)
	if err != nil {
		return nil, err
	}

	return config.Load(v)
}

// BuildStore constructs the tiered store from config: the durable store,
// the optional cache, and the optional semantic index with its embedder.
// The returned store owns the tier handles; Close releases all of them.
func BuildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*tiered.Store, error) {
	storer, err := buildStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cacher, err := buildCache(cfg)
	if err != nil {
		storer.Close()
		return nil, err
	}

	vectorer, embedder, err := buildVector(ctx, cfg, logger)
	if err != nil {
		storer.Close()
		return nil, err
	}

	store, err := tiered.NewStore(&tiered.Config{
		Cache:    cacher,
		Storage:  storer,
		Vector:   vectorer,
		Embedder: embedder,
		TTL:      time.Duration(cfg.Cache.TTLHours) * time.Hour,
		Logger:   logger,
	})
	if err != nil {
		storer.Close()
		if vectorer != nil {
			vectorer.Close()
		}
		return nil, err
	}

	return store, nil
}

// BuildExtractor constructs an extractor persisting through the given
// store, with cue lexicons taken from config.
func BuildExtractor(cfg *config.Config, store *tiered.Store, logger *zap.Logger) *extract.Extractor {
	return extract.NewExtractor(extract.Config{
		Lexicon: extract.Lexicon{
			BeginCues:      cfg.Extract.BeginCues,
			EndCues:        cfg.Extract.EndCues,
			TopicShiftCues: cfg.Extract.TopicShiftCues,
			BackRefCues:    cfg.Extract.BackRefCues,
		},
	}, store, logger)
}

// BuildPublisher constructs the configured event publisher.
func BuildPublisher(cfg *config.Config, logger *zap.Logger) (eventstream.Publisher, error) {
	return eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Brokers:      cfg.Events.Brokers,
		Topic:        cfg.Events.Topic,
		Logger:       logger,
	})
}

func buildStorage(ctx context.Context, cfg *config.Config) (storage.Driver, error) {
	switch cfg.Storage.Provider {
	case "sqlite":
		return sqlite.NewDriver(cfg.Storage.SQLitePath)
	case "postgres":
		return postgres.NewDriver(ctx, cfg.Storage.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Storage.Provider)
	}
}

func buildCache(cfg *config.Config) (cache.Driver, error) {
	switch cfg.Cache.Provider {
	case "local":
		return local.NewDriver(), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Cache.Provider)
	}
}

func buildVector(ctx context.Context, cfg *config.Config, logger *zap.Logger) (vector.Driver, embeddings.Embedder, error) {
	if cfg.VectorStore.Provider == "" || cfg.VectorStore.Provider == "none" {
		return nil, nil, nil
	}

	vectorer, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       cfg.VectorStore.Target,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, err
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		vectorer.Close()
		return nil, nil, err
	}

	return vectorer, embedder, nil
}
