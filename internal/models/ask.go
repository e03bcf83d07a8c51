package models

import "fmt"

// Default and maximum number of context chunks retrieved per question.
const (
	DefaultTopK = 4
	MaxTopK     = 20
)

// AskRequest is a question against the indexed corpus with an optional
// top-k override for how many context chunks to retrieve.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// Validate ensures the request has a question and normalizes TopK.
func (r *AskRequest) Validate() error {
	if r.Question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if r.TopK <= 0 {
		r.TopK = DefaultTopK
	}
	if r.TopK > MaxTopK {
		r.TopK = MaxTopK
	}
	return nil
}
