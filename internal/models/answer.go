package models

// RetrievedChunk is a single retrieval hit: a chunk and its similarity score.
type RetrievedChunk struct {
	Chunk *DocumentChunk `json:"chunk"`
	Score float64        `json:"score"`
}

// Answer is a generated answer together with the chunks used to produce it.
// Context is ordered most-similar first and may be empty when the index has
// no chunks. Fallback is true when the answer is a deterministic fallback
// produced without (or instead of) a model call.
type Answer struct {
	Question  string            `json:"question"`
	Text      string            `json:"text"`
	Context   []*RetrievedChunk `json:"context"`
	Model     string            `json:"model,omitempty"`
	QueryTime int64             `json:"query_time_ms"`
	Fallback  bool              `json:"fallback,omitempty"`
}
