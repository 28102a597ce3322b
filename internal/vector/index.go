package vector

// Index is an approximate nearest-neighbor index over function embeddings.
// All operations are synchronous and single-threaded; an instance owns its
// vector map, cluster/bucket structures, and result cache exclusively.
// Callers needing cancellation or parallelism wrap the index externally.
type Index interface {
	// Build fully rebuilds the index from vectors, discarding prior state.
	// Vectors failing validation abort the build; zero-norm vectors are
	// logged and skipped.
	Build(vectors []Embedding) error
	// Search returns at most k results, descending by similarity. An
	// unbuilt or empty index returns an empty list.
	Search(query []float32, k int) ([]SearchResult, error)
	// UpdateConfig atomically swaps the configuration. A changed config
	// clears the result cache and reseeds the random source; an identical
	// one leaves both untouched.
	UpdateConfig(cfg Config) error
	// Stats reports structural metrics for diagnostics.
	Stats() Stats
}

// Stats describes an index's current structure for diagnostic reporting.
type Stats struct {
	Algorithm     Algorithm `json:"algorithm"`
	TotalVectors  int       `json:"total_vectors"`
	Dimensions    int       `json:"dimensions"`
	ClusterCount  int       `json:"cluster_count,omitempty"`
	TableCount    int       `json:"table_count,omitempty"`
	BucketCount   int       `json:"bucket_count,omitempty"`
	Iterations    int       `json:"iterations,omitempty"`
	CacheEntries  int       `json:"cache_entries"`
	CacheCapacity int       `json:"cache_capacity"`
	Config        Config    `json:"config"`
}
