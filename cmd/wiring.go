package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"boe-rag/internal/artifacts"
	"boe-rag/internal/chromemdb"
	"boe-rag/internal/chunker"
	"boe-rag/internal/config"
	"boe-rag/internal/db"
	"boe-rag/internal/embedding"
	"boe-rag/internal/fetch"
	"boe-rag/internal/parser"
	"boe-rag/internal/pipeline"
	"boe-rag/internal/summary"
	"boe-rag/internal/vectorstore"
)

// closers releases the connections opened while wiring.
type closers []func() error

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		errs = append(errs, c[i]())
	}
	return errors.Join(errs...)
}

func newFetcher(cfg *config.Config, observer pipeline.Observer, logger zerolog.Logger) *fetch.Fetcher {
	return fetch.New(fetch.Config{
		Attempts:   cfg.Fetch.Attempts,
		BaseDelay:  cfg.Fetch.BaseDelay,
		Timeout:    cfg.Fetch.Timeout,
		MinSpacing: cfg.Fetch.MinSpacing,
		UserAgent:  cfg.Fetch.UserAgent,
	},
		fetch.WithLogger(logger),
		fetch.WithRetryHook(observer.FetchRetried),
	)
}

func newEmbedder(cfg *config.Config, logger zerolog.Logger) (*embedding.Embedder, error) {
	if !cfg.EmbedLLM.Enabled {
		return embedding.NewEmbedder(nil, cfg.EmbedLLM.Dimension, logger), nil
	}
	provider, err := embedding.NewProvider(&cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}
	return embedding.NewEmbedder(provider, cfg.EmbedLLM.Dimension, logger), nil
}

// openStores opens every enabled database-like store.
func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*db.Store, *chromemdb.VectorDBManager, *vectorstore.QdrantStore, closers, error) {
	var c closers
	var pg *db.Store
	var chroma *chromemdb.VectorDBManager
	var qd *vectorstore.QdrantStore

	if cfg.Database.Enabled {
		store, err := db.Open(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, c, fmt.Errorf("connecting to database: %w", err)
		}
		pg = store
		c = append(c, store.Close)
	}
	if cfg.Chromem.Enabled {
		m, err := chromemdb.NewVectorDBManager(cfg.Chromem.Path, cfg.Chromem.Collection, cfg.Chromem.Compress, logger)
		if err != nil {
			return nil, nil, nil, c, err
		}
		chroma = m
	}
	if cfg.Qdrant.Enabled {
		s, err := vectorstore.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.Collection, logger)
		if err != nil {
			return nil, nil, nil, c, err
		}
		if err := s.EnsureCollection(ctx, cfg.EmbedLLM.Dimension); err != nil {
			s.Close()
			return nil, nil, nil, c, err
		}
		qd = s
		c = append(c, s.Close)
	}
	return pg, chroma, qd, c, nil
}

// buildPipeline wires a pipeline from cfg. A dry run keeps the local
// artifacts and the CSV/XLSX outputs but skips embedding and every store.
func buildPipeline(ctx context.Context, cfg *config.Config, observer pipeline.Observer, dryRun bool) (*pipeline.Pipeline, closers, error) {
	logger := log.Logger

	fetcher := newFetcher(cfg, observer, logger)
	sel, err := chunker.NewSelector(chunker.RulesFromConfig(cfg.Chunking.Rules))
	if err != nil {
		return nil, nil, fmt.Errorf("chunking rules: %w", err)
	}
	ch := chunker.New(chunker.NewTokenCounter(cfg.Chunking.Encoding, logger), cfg.Chunking.MaxTokens, sel)

	store := artifacts.New(cfg.Artifacts, logger)
	opts := []pipeline.Option{
		pipeline.WithArtifacts(store),
		pipeline.WithObserver(observer),
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithLogger(logger),
		pipeline.WithRecordSinks(store.CSV()),
	}
	if cfg.Artifacts.XLSX {
		opts = append(opts, pipeline.WithRecordSinks(store.XLSX()))
	}

	var c closers
	if !dryRun {
		embedder, err := newEmbedder(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithEmbedder(embedder))

		pg, chroma, qd, cl, err := openStores(ctx, cfg, logger)
		c = cl
		if err != nil {
			return nil, c, err
		}
		if pg != nil {
			opts = append(opts, pipeline.WithRecordSinks(pg), pipeline.WithChunkSinks(pg))
		}
		if chroma != nil {
			opts = append(opts, pipeline.WithChunkSinks(chroma))
		}
		if qd != nil {
			opts = append(opts, pipeline.WithChunkSinks(qd))
		}
	}

	p := pipeline.New(
		summary.NewClient(fetcher),
		parser.NewExtractor(fetcher, logger, cfg.Pipeline.PDFFallback),
		ch,
		opts...,
	)
	return p, c, nil
}
