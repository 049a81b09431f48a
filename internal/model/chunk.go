package model

// DocumentChunk is one embedded slice of the ingested corpus. Chunks are
// created once per ingestion run and never updated afterwards.
type DocumentChunk struct {
	ChunkID   string
	Content   string
	Embedding []float32
}

// ScoredChunk is a retrieval result, distance as reported by the store
// (smaller is closer).
type ScoredChunk struct {
	ChunkID  string
	Content  string
	Distance float64
}
