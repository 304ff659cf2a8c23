package model

// Claim is a factual statement under verification. The ID is the join key
// across every file produced downstream.
type Claim struct {
	ID   int64  `json:"id"`
	Text string `json:"claim" validate:"required"`
}

// Verdict is the majority-vote stance of a claim's documents
type Verdict struct {
	Label        Label   `json:"label"`
	SupportRatio float64 `json:"support_ratio"`
	Documents    int     `json:"documents"`
}
