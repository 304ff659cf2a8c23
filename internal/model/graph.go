package model

import "fmt"

// NodeType classifies graph nodes
type NodeType string

const (
	NodeClaim    NodeType = "claim"
	NodeDocument NodeType = "document"
	NodeEvidence NodeType = "evidence"
	NodeAuthor   NodeType = "author"
)

// LinkLabel classifies graph links
type LinkLabel string

const (
	LinkSupport    LinkLabel = "true"      // stance SUPPORT
	LinkContradict LinkLabel = "false"     // stance CONTRADICT
	LinkEvidence   LinkLabel = "evidence"  // document membership
	LinkReference  LinkLabel = "reference" // document cites document
	LinkAuthor     LinkLabel = "author"    // authorship
)

// StanceLabel encodes a stance for claim-document and evidence-evidence links
func StanceLabel(l Label) LinkLabel {
	if l == LabelSupport {
		return LinkSupport
	}
	return LinkContradict
}

// ClaimNodeID is the id of the single claim node in every graph
const ClaimNodeID = "Claim"

// AuthorNodeID namespaces author ids away from corpus ids
func AuthorNodeID(authorID string) string {
	return "author:" + authorID
}

// DocumentNodeID renders a corpus id as a node id
func DocumentNodeID(docID int64) string {
	return fmt.Sprintf("%d", docID)
}

// Node is a graph vertex
type Node struct {
	ID      string     `json:"id"`
	Type    NodeType   `json:"type"`
	Text    string     `json:"text"`
	Size    float64    `json:"size"`
	SizeRaw []*float64 `json:"sizeRaw,omitempty"`
	Date    string     `json:"date,omitempty"`
	Authors string     `json:"authors,omitempty"`
	Journal string     `json:"journal,omitempty"`
}

// Link is a graph edge
type Link struct {
	Source        string    `json:"source"`
	Target        string    `json:"target"`
	Label         LinkLabel `json:"label"`
	Width         float64   `json:"width"`
	SentProb      *float64  `json:"sentProb,omitempty"`
	Bidirectional *bool     `json:"bidirectional,omitempty"`
}

// Graph is the per-claim relationship graph. The claim node comes first.
type Graph struct {
	ClaimID int64  `json:"claim_id"`
	Nodes   []Node `json:"nodes"`
	Links   []Link `json:"links"`
}

// Validate checks node id uniqueness and that every link endpoint exists
func (g *Graph) Validate() error {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	for _, l := range g.Links {
		if _, ok := ids[l.Source]; !ok {
			return fmt.Errorf("link source %q is not a node", l.Source)
		}
		if _, ok := ids[l.Target]; !ok {
			return fmt.Errorf("link target %q is not a node", l.Target)
		}
	}
	return nil
}

// CountNodes returns the number of nodes of the given type
func (g *Graph) CountNodes(t NodeType) int {
	n := 0
	for _, node := range g.Nodes {
		if node.Type == t {
			n++
		}
	}
	return n
}
