// Package pipeline wires the stages of a claimgraph run together.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/claimgraph/internal/cache"
	"github.com/ppiankov/claimgraph/internal/features"
	"github.com/ppiankov/claimgraph/internal/graph"
	"github.com/ppiankov/claimgraph/internal/logger"
	"github.com/ppiankov/claimgraph/internal/metadata"
	"github.com/ppiankov/claimgraph/internal/model"
	"github.com/ppiankov/claimgraph/internal/worker"
)

// Pipeline orchestrates one run. It owns the response cache and the
// metadata client; the author name map lives for a single stage call.
type Pipeline struct {
	config  *model.Config
	log     *logger.Logger
	runID   string
	client  *metadata.Client
	meta    features.MetadataSource
	builder *graph.Builder
	disk    *cache.BadgerCache
}

// New creates a pipeline with a live metadata client
func New(cfg *model.Config, log *logger.Logger) (*Pipeline, error) {
	if log == nil {
		log = logger.NewNop()
	}
	runID := uuid.NewString()
	log = log.With("run_id", runID)

	var responses cache.Cache = cache.Nop{}
	var disk *cache.BadgerCache
	if cfg.Cache.Enabled {
		var err error
		disk, err = cache.NewBadgerCache(cfg.Cache.Dir, cfg.Cache.DiskTTL)
		if err != nil {
			return nil, fmt.Errorf("open response cache: %w", err)
		}
		memory := cache.NewMemoryCache(cfg.Cache.MemoryTTL, 10*time.Minute)
		responses = cache.NewLayeredCache(memory, disk)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	client := metadata.NewClient(cfg.Metadata, limiter, responses, log)

	return &Pipeline{
		config:  cfg,
		log:     log,
		runID:   runID,
		client:  client,
		meta:    client,
		builder: graph.NewBuilder(cfg.Graph, log),
		disk:    disk,
	}, nil
}

// NewWithMetadata creates a pipeline over an existing metadata source
func NewWithMetadata(cfg *model.Config, meta features.MetadataSource, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	runID := uuid.NewString()
	log = log.With("run_id", runID)
	return &Pipeline{
		config:  cfg,
		log:     log,
		runID:   runID,
		meta:    meta,
		builder: graph.NewBuilder(cfg.Graph, log),
	}
}

// RunID identifies this run in logs
func (p *Pipeline) RunID() string { return p.runID }

// Close releases the response cache
func (p *Pipeline) Close() error {
	if p.disk == nil {
		return nil
	}
	return p.disk.Close()
}

// Resolve maps an external paper identifier to a corpus id
func (p *Pipeline) Resolve(ctx context.Context, id, idType string) (int64, bool, error) {
	if p.client == nil {
		return 0, false, errors.New("no metadata client configured")
	}
	return p.client.CorpusID(ctx, id, idType)
}

// Summary reports what a stage produced
type Summary struct {
	RunID     string
	Claims    int // claims written
	Skipped   int // claims without usable evidence
	Documents int
	Tasks     int
	Graphs    int
	Degraded  int // documents with no bibliographic metadata
	Duration  time.Duration
}
