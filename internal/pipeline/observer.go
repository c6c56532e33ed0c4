package pipeline

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"boe-rag/internal/models"
)

// Observer is notified of per-item outcomes. Implementations must be safe for
// concurrent use.
type Observer interface {
	ItemProcessed(rec models.FlatRecord, chunks int)
	ChunkEmitted(c models.Chunk)
	FetchRetried(url string, attempt uint, err error)
	FetchFailed(rec models.FlatRecord, err error)
	EmbedFallback(rec models.FlatRecord, chunks int)
	PersistSkipped(sink string, n int)
}

// Observers fans every event out to each observer in order.
type Observers []Observer

func (o Observers) ItemProcessed(rec models.FlatRecord, chunks int) {
	for _, x := range o {
		x.ItemProcessed(rec, chunks)
	}
}

func (o Observers) ChunkEmitted(c models.Chunk) {
	for _, x := range o {
		x.ChunkEmitted(c)
	}
}

func (o Observers) FetchRetried(url string, attempt uint, err error) {
	for _, x := range o {
		x.FetchRetried(url, attempt, err)
	}
}

func (o Observers) FetchFailed(rec models.FlatRecord, err error) {
	for _, x := range o {
		x.FetchFailed(rec, err)
	}
}

func (o Observers) EmbedFallback(rec models.FlatRecord, chunks int) {
	for _, x := range o {
		x.EmbedFallback(rec, chunks)
	}
}

func (o Observers) PersistSkipped(sink string, n int) {
	for _, x := range o {
		x.PersistSkipped(sink, n)
	}
}

// LogObserver writes events to a zerolog logger.
type LogObserver struct {
	Logger zerolog.Logger
}

func (l LogObserver) ItemProcessed(rec models.FlatRecord, chunks int) {
	l.Logger.Info().Str("item_id", rec.ItemID).Str("seccion", rec.SeccionCodigo).Int("chunks", chunks).Msg("item processed")
}

func (l LogObserver) ChunkEmitted(c models.Chunk) {
	l.Logger.Debug().Str("item_id", c.ItemID).Int("seq", c.Seq).Str("label", c.Label).Str("strategy", c.Strategy).Int("tokens", c.Tokens).Msg("chunk")
}

func (l LogObserver) FetchRetried(url string, attempt uint, err error) {
	l.Logger.Debug().Err(err).Str("url", url).Uint("attempt", attempt).Msg("fetch retry")
}

func (l LogObserver) FetchFailed(rec models.FlatRecord, err error) {
	l.Logger.Warn().Err(err).Str("item_id", rec.ItemID).Msg("body unavailable, continuing with empty text")
}

func (l LogObserver) EmbedFallback(rec models.FlatRecord, chunks int) {
	l.Logger.Warn().Str("item_id", rec.ItemID).Int("chunks", chunks).Msg("zero vectors substituted")
}

func (l LogObserver) PersistSkipped(sink string, n int) {
	l.Logger.Warn().Str("sink", sink).Int("skipped", n).Msg("duplicates skipped")
}

// Stats counts events across a run.
type Stats struct {
	items          atomic.Int64
	emptyBodies    atomic.Int64
	chunks         atomic.Int64
	retries        atomic.Int64
	fetchFailures  atomic.Int64
	embedFallbacks atomic.Int64
	persistSkipped atomic.Int64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Items          int64 `json:"items"`
	EmptyBodies    int64 `json:"empty_bodies"`
	Chunks         int64 `json:"chunks"`
	Retries        int64 `json:"retries"`
	FetchFailures  int64 `json:"fetch_failures"`
	EmbedFallbacks int64 `json:"embed_fallbacks"`
	PersistSkipped int64 `json:"persist_skipped"`
}

func (s *Stats) ItemProcessed(rec models.FlatRecord, _ int) {
	s.items.Add(1)
	if rec.Texto == "" {
		s.emptyBodies.Add(1)
	}
}

func (s *Stats) ChunkEmitted(models.Chunk)                { s.chunks.Add(1) }
func (s *Stats) FetchRetried(string, uint, error)         { s.retries.Add(1) }
func (s *Stats) FetchFailed(models.FlatRecord, error)     { s.fetchFailures.Add(1) }
func (s *Stats) EmbedFallback(_ models.FlatRecord, n int) { s.embedFallbacks.Add(int64(n)) }
func (s *Stats) PersistSkipped(_ string, n int)           { s.persistSkipped.Add(int64(n)) }

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Items:          s.items.Load(),
		EmptyBodies:    s.emptyBodies.Load(),
		Chunks:         s.chunks.Load(),
		Retries:        s.retries.Load(),
		FetchFailures:  s.fetchFailures.Load(),
		EmbedFallbacks: s.embedFallbacks.Load(),
		PersistSkipped: s.persistSkipped.Load(),
	}
}

// MarshalZerologObject lets a snapshot be logged with Event.Object.
func (s Snapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("items", s.Items).
		Int64("empty_bodies", s.EmptyBodies).
		Int64("chunks", s.Chunks).
		Int64("retries", s.Retries).
		Int64("fetch_failures", s.FetchFailures).
		Int64("embed_fallbacks", s.EmbedFallbacks).
		Int64("persist_skipped", s.PersistSkipped)
}
