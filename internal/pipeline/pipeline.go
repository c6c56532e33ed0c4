// Package pipeline runs one ingestion per publication date: summary, item
// bodies, chunks, vectors and sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"boe-rag/internal/models"
	"boe-rag/internal/summary"
)

type Pipeline struct {
	source      SummarySource
	extractor   BodyExtractor
	chunker     Chunker
	embedder    Embedder
	artifacts   Artifacts
	recordSinks []RecordSink
	chunkSinks  []ChunkSink
	observer    Observer
	workers     int
	logger      zerolog.Logger
}

type Option func(*Pipeline)

// WithEmbedder enables embedding and the chunk sinks.
func WithEmbedder(e Embedder) Option {
	return func(p *Pipeline) { p.embedder = e }
}

func WithArtifacts(a Artifacts) Option {
	return func(p *Pipeline) { p.artifacts = a }
}

func WithRecordSinks(sinks ...RecordSink) Option {
	return func(p *Pipeline) { p.recordSinks = append(p.recordSinks, sinks...) }
}

func WithChunkSinks(sinks ...ChunkSink) Option {
	return func(p *Pipeline) { p.chunkSinks = append(p.chunkSinks, sinks...) }
}

func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// WithWorkers bounds how many items are processed at once. Fetches stay
// paced by the fetcher's shared limiter whatever the count.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func New(source SummarySource, extractor BodyExtractor, chunker Chunker, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:    source,
		extractor: extractor,
		chunker:   chunker,
		observer:  Observers{},
		workers:   1,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarises one date.
type Result struct {
	Date    time.Time
	Records []models.FlatRecord
	Chunks  int
}

// Run ingests date. Item-level failures degrade to empty bodies and never
// abort the run; only a failed summary download, a record sink error or
// cancellation are returned.
func (p *Pipeline) Run(ctx context.Context, date time.Time) (*Result, error) {
	logger := p.logger.With().Str("date", date.Format(time.DateOnly)).Logger()

	raw, err := p.source.Get(ctx, date)
	if errors.Is(err, summary.ErrNotPublished) {
		logger.Info().Msg("nothing published")
		return &Result{Date: date, Records: []models.FlatRecord{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if p.artifacts != nil {
		if path, err := p.artifacts.SaveSummary(date, raw); err != nil {
			logger.Warn().Err(err).Msg("summary artifact not saved")
		} else {
			logger.Debug().Str("path", path).Msg("summary saved")
		}
	}

	records := summary.Normalize(raw)
	res := &Result{Date: date, Records: records}
	if len(records) == 0 {
		logger.Info().Msg("nothing published")
		return res, nil
	}
	logger.Info().Int("items", len(records)).Int("workers", p.workers).Msg("processing items")

	var chunks atomic.Int64
	g := errgroup.Group{}
	g.SetLimit(p.workers)
	for i := range records {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			n := p.processItem(ctx, &records[i], logger)
			chunks.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait()
	res.Chunks = int(chunks.Load())

	if err := ctx.Err(); err != nil {
		return res, err
	}

	for _, sink := range p.recordSinks {
		skipped, err := sink.WriteRecords(ctx, date, records)
		if err != nil {
			return res, fmt.Errorf("%s sink: %w", sink.Name(), err)
		}
		if skipped > 0 {
			p.observer.PersistSkipped(sink.Name(), skipped)
		}
	}
	return res, nil
}

// processItem fills rec.Texto and pushes the item's chunks to the chunk sinks.
// Each call owns rec; nothing else is shared between items.
func (p *Pipeline) processItem(ctx context.Context, rec *models.FlatRecord, logger zerolog.Logger) int {
	body, err := p.extractor.Extract(ctx, *rec)
	if err != nil {
		p.observer.FetchFailed(*rec, err)
	}
	rec.Texto = body.Text

	if p.artifacts != nil {
		if err := p.artifacts.SaveXML(rec.ItemID, body.XML); err != nil {
			logger.Warn().Err(err).Msg("xml artifact not saved")
		}
	}

	chunks := p.chunker.Chunk(*rec, body.Blocks)
	for _, c := range chunks {
		p.observer.ChunkEmitted(c)
	}

	if p.artifacts != nil {
		if err := p.artifacts.SaveChunks(*rec, chunks); err != nil {
			logger.Warn().Err(err).Msg("chunk artifact not saved")
		}
	}

	if p.embedder != nil && len(chunks) > 0 {
		embedded, fallbacks := p.embedder.EmbedChunks(ctx, *rec, chunks)
		if fallbacks > 0 {
			p.observer.EmbedFallback(*rec, fallbacks)
		}
		for _, sink := range p.chunkSinks {
			skipped, err := sink.WriteChunks(ctx, embedded)
			if err != nil {
				logger.Error().Err(err).Str("sink", sink.Name()).Str("item_id", rec.ItemID).Msg("chunks not stored")
				continue
			}
			if skipped > 0 {
				p.observer.PersistSkipped(sink.Name(), skipped)
			}
		}
	}

	p.observer.ItemProcessed(*rec, len(chunks))
	return len(chunks)
}
