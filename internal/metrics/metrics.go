package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Metadata client
	MetadataRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimgraph_metadata_requests_total",
			Help: "Metadata API requests by outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	MetadataRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claimgraph_metadata_rate_limited_total",
		Help: "Metadata API responses that triggered a backoff",
	})

	DegradedDocuments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claimgraph_documents_empty_metadata_total",
		Help: "Documents aggregated with empty bibliographic metadata",
	})

	// Cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimgraph_cache_hits_total",
			Help: "Number of response cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimgraph_cache_misses_total",
			Help: "Number of response cache misses",
		},
		[]string{"cache_type"},
	)

	// Pipeline
	ClaimsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimgraph_claims_processed_total",
			Help: "Claims handled per stage",
		},
		[]string{"stage"},
	)

	TasksGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claimgraph_evidence_tasks_total",
		Help: "Synthetic evidence-pair tasks generated",
	})

	// Graph
	GraphNodeCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimgraph_graph_nodes_total",
			Help: "Nodes emitted by node type",
		},
		[]string{"node_type"},
	)

	GraphLinkCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimgraph_graph_links_total",
			Help: "Links emitted by label",
		},
		[]string{"label"},
	)

	EvidenceLinkDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimgraph_evidence_link_decisions_total",
			Help: "Evidence-evidence reconciliation outcomes",
		},
		[]string{"decision"},
	)
)

// WriteTextfile dumps the default registry in the text exposition format,
// for pickup by a node_exporter textfile collector after a batch run.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
