package vector

import (
	"sort"

	"go.uber.org/zap"
)

// HybridIndex builds a hierarchical and an LSH index over the same vector
// set and blends their result sets by weighted similarity.
type HybridIndex struct {
	cfg          Config
	logger       *zap.Logger
	hierarchical *HierarchicalIndex
	lsh          *LSHIndex
}

// NewHybridIndex creates an unbuilt hybrid index. cfg must already be
// validated. logger may be nil.
func NewHybridIndex(cfg Config, logger *zap.Logger) *HybridIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Seed == 0 {
		// Draw once so both sub-indexes share the effective seed, the
		// same as when one is given explicitly.
		cfg.Seed = NewRand(0).Seed()
	}
	return &HybridIndex{
		cfg:          cfg,
		logger:       logger,
		hierarchical: NewHierarchicalIndex(cfg, logger),
		lsh:          NewLSHIndex(cfg, logger),
	}
}

// Build builds both sub-indexes on the same vectors.
func (x *HybridIndex) Build(vectors []Embedding) error {
	if err := x.hierarchical.Build(vectors); err != nil {
		return err
	}
	return x.lsh.Build(vectors)
}

// Search requests 2k candidates from each sub-index and merges by id: an id
// in one result set keeps its similarity scaled by that sub-index's weight;
// an id in both gets the weighted sum of the two similarities. The merged
// list is sorted descending and truncated to k.
func (x *HybridIndex) Search(query []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return []SearchResult{}, nil
	}
	hResults, err := x.hierarchical.Search(query, 2*k)
	if err != nil {
		return nil, err
	}
	lResults, err := x.lsh.Search(query, 2*k)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]*SearchResult, len(hResults)+len(lResults))
	order := make([]string, 0, len(hResults)+len(lResults))
	for _, r := range hResults {
		r := r
		r.Similarity *= x.cfg.HierarchicalWeight
		merged[r.ID] = &r
		order = append(order, r.ID)
	}
	for _, r := range lResults {
		if existing, ok := merged[r.ID]; ok {
			existing.Similarity += r.Similarity * x.cfg.LSHWeight
			continue
		}
		r := r
		r.Similarity *= x.cfg.LSHWeight
		merged[r.ID] = &r
		order = append(order, r.ID)
	}

	results := make([]SearchResult, 0, len(order))
	for _, id := range order {
		results = append(results, *merged[id])
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// UpdateConfig propagates the swap to both sub-indexes.
func (x *HybridIndex) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(x.logger); err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = NewRand(0).Seed()
	}
	if err := x.hierarchical.UpdateConfig(cfg); err != nil {
		return err
	}
	if err := x.lsh.UpdateConfig(cfg); err != nil {
		return err
	}
	x.cfg = cfg
	return nil
}

// Stats combines both sub-indexes' structure under the hybrid algorithm.
func (x *HybridIndex) Stats() Stats {
	hs := x.hierarchical.Stats()
	ls := x.lsh.Stats()
	return Stats{
		Algorithm:     AlgorithmHybrid,
		TotalVectors:  hs.TotalVectors,
		Dimensions:    hs.Dimensions,
		ClusterCount:  hs.ClusterCount,
		Iterations:    hs.Iterations,
		TableCount:    ls.TableCount,
		BucketCount:   ls.BucketCount,
		CacheEntries:  hs.CacheEntries + ls.CacheEntries,
		CacheCapacity: hs.CacheCapacity + ls.CacheCapacity,
		Config:        x.cfg,
	}
}
