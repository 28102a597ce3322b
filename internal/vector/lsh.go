package vector

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// maxLSHTables caps the table count regardless of dataset scaling, bounding
// memory on large corpora.
const maxLSHTables = 32

// LSHIndex answers similarity queries with multi-table random-projection
// hashing: vectors that land in the same bucket as the query in any table
// become candidates for exact re-ranking.
type LSHIndex struct {
	cfg    Config
	logger *zap.Logger
	rng    *Rand
	cache  *ResultCache

	dim     int
	vectors []Embedding
	norms   []float64
	// hyperplanes[t][b] is the Gaussian hyperplane for bit b of table t.
	hyperplanes [][][]float32
	tables      []map[string][]int
}

// NewLSHIndex creates an unbuilt LSH index. cfg must already be validated.
// logger may be nil.
func NewLSHIndex(cfg Config, logger *zap.Logger) *LSHIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := NewRand(cfg.Seed)
	cfg.Seed = rng.Seed()
	return &LSHIndex{
		cfg:    cfg,
		logger: logger,
		rng:    rng,
		cache:  NewResultCache(cfg.CacheSize),
	}
}

// tableCount scales the approximation level's base table count
// logarithmically with dataset size, capped at maxLSHTables.
func (l *LSHIndex) tableCount(n int) int {
	count := l.cfg.baseTableCount()
	if n > 1 && l.cfg.TableMultiplier > 1 {
		scaled := float64(count) * (1 + (l.cfg.TableMultiplier-1)*math.Log10(float64(n))/4)
		count = int(scaled)
	}
	if count > maxLSHTables {
		count = maxLSHTables
	}
	if count < 1 {
		count = 1
	}
	return count
}

// Build regenerates hyperplanes from the deterministic random source and
// hashes every vector into each table's buckets.
func (l *LSHIndex) Build(vectors []Embedding) error {
	l.vectors = nil
	l.norms = nil
	l.hyperplanes = nil
	l.tables = nil
	l.dim = 0
	l.cache.Clear()

	for _, v := range vectors {
		if err := ValidateVector(v.Vector, l.dim); err != nil {
			return fmt.Errorf("vector %s: %w", v.ID, err)
		}
		n := Norm(v.Vector)
		if n == 0 {
			l.logger.Warn("skipping zero-norm vector", zap.String("id", v.ID))
			continue
		}
		if l.dim == 0 {
			l.dim = len(v.Vector)
		}
		l.vectors = append(l.vectors, Embedding{
			ID:         v.ID,
			SemanticID: v.SemanticID,
			Vector:     copyVector(v.Vector),
			Metadata:   v.Metadata,
		})
		l.norms = append(l.norms, n)
	}
	if len(l.vectors) == 0 {
		return nil
	}

	numTables := l.tableCount(len(l.vectors))
	l.hyperplanes = make([][][]float32, numTables)
	l.tables = make([]map[string][]int, numTables)
	for t := 0; t < numTables; t++ {
		planes := make([][]float32, l.cfg.HashBits)
		for b := 0; b < l.cfg.HashBits; b++ {
			plane := make([]float32, l.dim)
			for d := 0; d < l.dim; d++ {
				plane[d] = float32(l.rng.NormFloat64())
			}
			planes[b] = plane
		}
		l.hyperplanes[t] = planes
		l.tables[t] = make(map[string][]int)
	}
	for vi := range l.vectors {
		for t := 0; t < numTables; t++ {
			key := l.hash(l.vectors[vi].Vector, t)
			l.tables[t][key] = append(l.tables[t][key], vi)
		}
	}
	l.logger.Debug("lsh index built",
		zap.Int("vectors", len(l.vectors)),
		zap.Int("tables", numTables),
		zap.Int("hash_bits", l.cfg.HashBits))
	return nil
}

// hash produces table t's bit-string bucket key for v: one bit per
// hyperplane, set when the dot product is non-negative.
func (l *LSHIndex) hash(v []float32, t int) string {
	var sb strings.Builder
	sb.Grow(l.cfg.HashBits)
	for _, plane := range l.hyperplanes[t] {
		if dot(v, plane) >= 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Search unions candidates from every table's matching bucket and re-ranks
// them exactly. A missing bucket simply contributes no candidates.
func (l *LSHIndex) Search(query []float32, k int) ([]SearchResult, error) {
	if len(l.vectors) == 0 {
		return []SearchResult{}, nil
	}
	if err := ValidateVector(query, l.dim); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []SearchResult{}, nil
	}
	key := queryKey(query, k, l.cfg.params())
	if cached, ok := l.cache.Get(key); ok {
		return copyResults(cached), nil
	}

	seen := make(map[int]struct{})
	var candidates []int
	for t := range l.tables {
		for _, vi := range l.tables[t][l.hash(query, t)] {
			if _, dup := seen[vi]; dup {
				continue
			}
			seen[vi] = struct{}{}
			candidates = append(candidates, vi)
		}
	}

	queryNorm := Norm(query)
	type scored struct {
		vi    int
		order int
		sim   float64
	}
	scores := make([]scored, len(candidates))
	for i, vi := range candidates {
		scores[i] = scored{vi, i, CosineSimilarity(query, l.vectors[vi].Vector, queryNorm, l.norms[vi])}
	}
	top := TopK(scores, k, func(a, b scored) bool {
		if a.sim != b.sim {
			return a.sim > b.sim
		}
		return a.order < b.order
	})
	results := make([]SearchResult, len(top))
	for i, s := range top {
		v := l.vectors[s.vi]
		results[i] = SearchResult{ID: v.ID, SemanticID: v.SemanticID, Similarity: s.sim, Metadata: v.Metadata}
	}
	l.cache.Set(key, copyResults(results))
	return results, nil
}

// UpdateConfig mirrors HierarchicalIndex.UpdateConfig.
func (l *LSHIndex) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(l.logger); err != nil {
		return err
	}
	if l.cfg.Equal(cfg) {
		return nil
	}
	reseed := cfg.Seed != l.cfg.Seed
	resize := cfg.CacheSize != l.cfg.CacheSize
	l.cfg = cfg
	if resize {
		l.cache = NewResultCache(cfg.CacheSize)
	} else {
		l.cache.Clear()
	}
	if reseed {
		l.rng = NewRand(cfg.Seed)
		l.cfg.Seed = l.rng.Seed()
	}
	return nil
}

// Stats reports table/bucket structure and cache occupancy.
func (l *LSHIndex) Stats() Stats {
	buckets := 0
	for _, t := range l.tables {
		buckets += len(t)
	}
	return Stats{
		Algorithm:     AlgorithmLSH,
		TotalVectors:  len(l.vectors),
		Dimensions:    l.dim,
		TableCount:    len(l.tables),
		BucketCount:   buckets,
		CacheEntries:  l.cache.Len(),
		CacheCapacity: l.cfg.CacheSize,
		Config:        l.cfg,
	}
}
