package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/2beens/routinestats/internal/eventlog"
	"github.com/2beens/routinestats/internal/routine"
	"github.com/2beens/routinestats/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	snapshotCacheSize = 32 * 1024 * 1024
	// freecache rejects entries larger than 1/1024 of its size
	snapshotChunkSize = 16 * 1024
)

type logReader interface {
	ListEvents(ctx context.Context, filter eventlog.Filter) ([]routine.EventRecord, error)
	ListFeedback(ctx context.Context, filter eventlog.Filter) ([]routine.FeedbackRecord, error)
}

// Snapshot is the complete event and feedback log at one point in time.
type Snapshot struct {
	Events   []routine.EventRecord    `json:"events"`
	Feedback []routine.FeedbackRecord `json:"feedback"`
}

// SnapshotLoader reads the full logs and keeps them cached for ttl, or until
// Invalidate is called by the write path. A zero ttl disables caching.
type SnapshotLoader struct {
	reader     logReader
	cache      *freecache.Cache
	ttl        time.Duration
	generation atomic.Uint64
}

func NewSnapshotLoader(reader logReader, ttl time.Duration) *SnapshotLoader {
	return &SnapshotLoader{
		reader: reader,
		cache:  freecache.NewCache(snapshotCacheSize),
		ttl:    ttl,
	}
}

func (l *SnapshotLoader) Load(ctx context.Context) (_ *Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.snapshot.load")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if cached, ok := l.cached(); ok {
		span.SetAttributes(attribute.Bool("cache-hit", true))
		return cached, nil
	}

	generation := l.generation.Load()
	events, err := l.reader.ListEvents(ctx, eventlog.Filter{})
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	feedback, err := l.reader.ListFeedback(ctx, eventlog.Filter{})
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}

	snapshot := &Snapshot{Events: events, Feedback: feedback}
	span.SetAttributes(
		attribute.Int("events", len(events)),
		attribute.Int("feedback", len(feedback)),
	)

	// a write landed while reading, the result may already be stale
	if l.ttl > 0 && generation == l.generation.Load() {
		l.store(generation, snapshot)
	}
	return snapshot, nil
}

// Invalidate drops the cached snapshot, the next Load reads the logs again.
// Entries of older generations are left to expire.
func (l *SnapshotLoader) Invalidate() {
	l.generation.Add(1)
}

// The snapshot is stored as JSON split in chunks: "<gen>" holds the chunk count,
// "<gen>/<i>" the chunks.
func headerKey(generation uint64) []byte {
	return []byte(fmt.Sprintf("snapshot:%d", generation))
}

func chunkKey(generation uint64, i int) []byte {
	return []byte(fmt.Sprintf("snapshot:%d/%d", generation, i))
}

func (l *SnapshotLoader) cached() (*Snapshot, bool) {
	if l.ttl <= 0 {
		return nil, false
	}

	generation := l.generation.Load()
	header, err := l.cache.Get(headerKey(generation))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Warnf("get cached snapshot: %s", err)
		}
		return nil, false
	}
	chunks, err := strconv.Atoi(string(header))
	if err != nil {
		log.Errorf("invalid cached snapshot header %q: %s", header, err)
		return nil, false
	}

	raw := make([]byte, 0, chunks*snapshotChunkSize)
	for i := 0; i < chunks; i++ {
		chunk, err := l.cache.Get(chunkKey(generation, i))
		if err != nil {
			// evicted
			return nil, false
		}
		raw = append(raw, chunk...)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		log.Errorf("unmarshal cached snapshot: %s", err)
		return nil, false
	}
	return &snapshot, true
}

func (l *SnapshotLoader) store(generation uint64, snapshot *Snapshot) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		log.Errorf("marshal snapshot: %s", err)
		return
	}
	expireSeconds := int(l.ttl.Seconds())
	if expireSeconds < 1 {
		expireSeconds = 1
	}

	chunks := 0
	for start := 0; start < len(raw); start += snapshotChunkSize {
		end := min(start+snapshotChunkSize, len(raw))
		if err := l.cache.Set(chunkKey(generation, chunks), raw[start:end], expireSeconds); err != nil {
			log.Warnf("cache snapshot chunk %d: %s", chunks, err)
			return
		}
		chunks++
	}
	// header last, so a reader never sees a header without its chunks
	if err := l.cache.Set(headerKey(generation), []byte(strconv.Itoa(chunks)), expireSeconds); err != nil {
		log.Warnf("cache snapshot header: %s", err)
	}
}
