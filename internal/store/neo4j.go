package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/ppiankov/claimgraph/internal/logger"
	"github.com/ppiankov/claimgraph/internal/model"
)

// nodeLabels maps node types to Neo4j labels
var nodeLabels = map[model.NodeType]string{
	model.NodeClaim:    "Claim",
	model.NodeDocument: "Document",
	model.NodeEvidence: "Evidence",
	model.NodeAuthor:   "Author",
}

// relTypes maps link labels to Neo4j relationship types
var relTypes = map[model.LinkLabel]string{
	model.LinkSupport:    "STANCE",
	model.LinkContradict: "STANCE",
	model.LinkEvidence:   "EVIDENCE_OF",
	model.LinkReference:  "CITES",
	model.LinkAuthor:     "AUTHORED_BY",
}

// Neo4jSink merges graphs into a Neo4j database. Documents and authors are
// shared across claims; claim and evidence nodes are scoped to their claim.
type Neo4jSink struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logger.Logger
}

// NewNeo4jSink connects and verifies connectivity
func NewNeo4jSink(ctx context.Context, cfg model.StoreConfig, log *logger.Logger) (*Neo4jSink, error) {
	if log == nil {
		log = logger.NewNop()
	}
	uri := strings.TrimSpace(cfg.Neo4jURI)
	if uri == "" {
		return nil, fmt.Errorf("neo4j: uri required")
	}
	user := cfg.Neo4jUser
	if user == "" {
		user = "neo4j"
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, cfg.Neo4jPassword, ""), func(c *neo4j.Config) {
		c.SocketConnectTimeout = 10 * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	s := &Neo4jSink{driver: driver, database: cfg.Neo4jDatabase, log: log.With("sink", "neo4j")}
	s.ensureSchema(ctx)
	return s, nil
}

func (s *Neo4jSink) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
}

// ensureSchema is best-effort; restricted users may not create constraints
func (s *Neo4jSink) ensureSchema(ctx context.Context) {
	session := s.session(ctx)
	defer func() { _ = session.Close(ctx) }()

	res, err := session.Run(ctx, `CREATE CONSTRAINT claimgraph_node_key IF NOT EXISTS FOR (n:ClaimGraphNode) REQUIRE n.key IS UNIQUE`, nil)
	if err != nil {
		s.log.Warn("neo4j schema init failed (continuing)", "error", err)
		return
	}
	_, _ = res.Consume(ctx)
}

// Write merges all nodes and relationships of one graph in a single transaction
func (s *Neo4jSink) Write(ctx context.Context, g *model.Graph) error {
	nodes := nodeRows(g)
	rels := relRows(g)

	session := s.session(ctx)
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for label, rows := range nodes {
			query := fmt.Sprintf(`
UNWIND $rows AS row
MERGE (n:ClaimGraphNode {key: row.key})
SET n:%s, n += row
`, label)
			if err := run(ctx, tx, query, rows); err != nil {
				return nil, err
			}
		}
		for relType, rows := range rels {
			query := fmt.Sprintf(`
UNWIND $rows AS row
MATCH (a:ClaimGraphNode {key: row.from})
MATCH (b:ClaimGraphNode {key: row.to})
MERGE (a)-[r:%s {claim_id: row.claim_id}]->(b)
SET r += row.props
`, relType)
			if err := run(ctx, tx, query, rows); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j: write graph of claim %d: %w", g.ClaimID, err)
	}
	return nil
}

func run(ctx context.Context, tx neo4j.ManagedTransaction, query string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	res, err := tx.Run(ctx, query, map[string]any{"rows": rows})
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

// Close closes the driver
func (s *Neo4jSink) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// nodeKey is the database identity of a node
func nodeKey(claimID int64, n model.Node) string {
	switch n.Type {
	case model.NodeClaim:
		return fmt.Sprintf("claim:%d", claimID)
	case model.NodeEvidence:
		return fmt.Sprintf("evidence:%d:%s", claimID, n.ID)
	case model.NodeAuthor:
		return n.ID
	default:
		return "document:" + n.ID
	}
}

// sizeProperty names the size property of a node. Document and author
// sizes are relative to one claim's graph, so shared nodes keep one per claim.
func sizeProperty(claimID int64, n model.Node) string {
	if n.Type == model.NodeDocument || n.Type == model.NodeAuthor {
		return fmt.Sprintf("size_%d", claimID)
	}
	return "size"
}

// nodeRows groups node properties by Neo4j label
func nodeRows(g *model.Graph) map[string][]map[string]any {
	rows := make(map[string][]map[string]any)
	for _, n := range g.Nodes {
		label, ok := nodeLabels[n.Type]
		if !ok {
			continue
		}
		row := map[string]any{
			"key":  nodeKey(g.ClaimID, n),
			"id":   n.ID,
			"type": string(n.Type),
			"text": n.Text,
		}
		row[sizeProperty(g.ClaimID, n)] = n.Size
		if n.Type == model.NodeClaim || n.Type == model.NodeEvidence {
			row["claim_id"] = g.ClaimID
		}
		if n.Date != "" {
			row["date"] = n.Date
		}
		if n.Authors != "" {
			row["authors"] = n.Authors
		}
		if n.Journal != "" {
			row["journal"] = n.Journal
		}
		rows[label] = append(rows[label], row)
	}
	return rows
}

// relRows groups relationship rows by relationship type
func relRows(g *model.Graph) map[string][]map[string]any {
	keys := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		keys[n.ID] = nodeKey(g.ClaimID, n)
	}

	rows := make(map[string][]map[string]any)
	for _, l := range g.Links {
		relType, ok := relTypes[l.Label]
		if !ok {
			continue
		}
		props := map[string]any{
			"label": string(l.Label),
			"width": l.Width,
		}
		if l.SentProb != nil {
			props["sent_prob"] = *l.SentProb
		}
		if l.Bidirectional != nil {
			props["bidirectional"] = *l.Bidirectional
		}
		rows[relType] = append(rows[relType], map[string]any{
			"from":     keys[l.Source],
			"to":       keys[l.Target],
			"claim_id": g.ClaimID,
			"props":    props,
		})
	}
	return rows
}
