// Package store persists built graphs.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/claimgraph/internal/dataset"
	"github.com/ppiankov/claimgraph/internal/model"
)

// Sink receives graphs one claim at a time
type Sink interface {
	Write(ctx context.Context, g *model.Graph) error
	Close(ctx context.Context) error
}

// JSONLSink writes one graph per line
type JSONLSink struct {
	w *dataset.Writer
}

// NewJSONLSink creates the output file
func NewJSONLSink(path string) (*JSONLSink, error) {
	w, err := dataset.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open graph output: %w", err)
	}
	return &JSONLSink{w: w}, nil
}

// Write appends a graph
func (s *JSONLSink) Write(_ context.Context, g *model.Graph) error {
	return s.w.Write(g)
}

// Count returns the number of graphs written
func (s *JSONLSink) Count() int { return s.w.Count() }

// Close flushes the file
func (s *JSONLSink) Close(context.Context) error {
	return s.w.Close()
}

// MultiSink fans graphs out to several sinks
type MultiSink []Sink

// Write stops at the first failing sink
func (m MultiSink) Write(ctx context.Context, g *model.Graph) error {
	for _, s := range m {
		if err := s.Write(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors
func (m MultiSink) Close(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
