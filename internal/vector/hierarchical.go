package vector

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// stagnationLimit is how many consecutive iterations the average centroid
// displacement may stay below a tenth of the convergence threshold before
// clustering stops early. Bounds runtime on inputs that never quite converge.
const stagnationLimit = 3

type cluster struct {
	centroid []float32
	norm     float64
	members  []int
}

// HierarchicalIndex answers similarity queries by clustering the vector set
// with k-means++ and searching only the clusters closest to the query.
type HierarchicalIndex struct {
	cfg    Config
	logger *zap.Logger
	rng    *Rand
	cache  *ResultCache

	dim        int
	vectors    []Embedding
	norms      []float64
	clusters   []cluster
	iterations int
}

// NewHierarchicalIndex creates an unbuilt hierarchical index. cfg must
// already be validated. logger may be nil.
func NewHierarchicalIndex(cfg Config, logger *zap.Logger) *HierarchicalIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := NewRand(cfg.Seed)
	// Record the effective seed so stats report a value that reproduces
	// this build even when the seed was drawn from entropy.
	cfg.Seed = rng.Seed()
	return &HierarchicalIndex{
		cfg:    cfg,
		logger: logger,
		rng:    rng,
		cache:  NewResultCache(cfg.CacheSize),
	}
}

// Build rebuilds the cluster structure from scratch. Zero-norm vectors are
// skipped since cosine similarity is undefined for them.
func (h *HierarchicalIndex) Build(vectors []Embedding) error {
	h.vectors = nil
	h.norms = nil
	h.clusters = nil
	h.iterations = 0
	h.dim = 0
	h.cache.Clear()

	for _, v := range vectors {
		if err := ValidateVector(v.Vector, h.dim); err != nil {
			return fmt.Errorf("vector %s: %w", v.ID, err)
		}
		n := Norm(v.Vector)
		if n == 0 {
			h.logger.Warn("skipping zero-norm vector", zap.String("id", v.ID))
			continue
		}
		if h.dim == 0 {
			h.dim = len(v.Vector)
		}
		h.vectors = append(h.vectors, Embedding{
			ID:         v.ID,
			SemanticID: v.SemanticID,
			Vector:     copyVector(v.Vector),
			Metadata:   v.Metadata,
		})
		h.norms = append(h.norms, n)
	}
	if len(h.vectors) == 0 {
		return nil
	}

	k := h.cfg.ClusterCount
	if k > len(h.vectors) {
		k = len(h.vectors)
	}
	h.clusters = h.seedCentroids(k)
	h.cluster()
	return nil
}

// seedCentroids picks k initial centroids with k-means++ weighting: the first
// uniformly at random, each subsequent one with probability proportional to
// squared distance from the nearest centroid already chosen.
func (h *HierarchicalIndex) seedCentroids(k int) []cluster {
	clusters := make([]cluster, 0, k)
	first := h.rng.IntN(0, len(h.vectors))
	clusters = append(clusters, newCluster(h.vectors[first].Vector))

	dists := make([]float64, len(h.vectors))
	for len(clusters) < k {
		var total float64
		for i := range h.vectors {
			best := math.Inf(1)
			for _, c := range clusters {
				if d := SquaredL2(h.vectors[i].Vector, c.centroid); d < best {
					best = d
				}
			}
			dists[i] = best
			total += best
		}
		var chosen int
		if total == 0 {
			chosen = h.rng.IntN(0, len(h.vectors))
		} else {
			target := h.rng.Float64() * total
			var acc float64
			for i, d := range dists {
				acc += d
				if acc >= target {
					chosen = i
					break
				}
			}
		}
		clusters = append(clusters, newCluster(h.vectors[chosen].Vector))
	}
	return clusters
}

func newCluster(centroid []float32) cluster {
	c := copyVector(centroid)
	return cluster{centroid: c, norm: Norm(c)}
}

// cluster runs Lloyd iterations until the maximum centroid displacement
// falls below the convergence threshold, the average displacement stagnates,
// or the iteration budget runs out. Empty clusters are pruned afterwards.
func (h *HierarchicalIndex) cluster() {
	stagnant := 0
	for iter := 0; iter < h.cfg.MaxIterations; iter++ {
		h.iterations = iter + 1
		for i := range h.clusters {
			h.clusters[i].members = h.clusters[i].members[:0]
		}
		for vi := range h.vectors {
			best, bestSim := 0, math.Inf(-1)
			for ci := range h.clusters {
				sim := CosineSimilarity(h.vectors[vi].Vector, h.clusters[ci].centroid, h.norms[vi], h.clusters[ci].norm)
				if sim > bestSim {
					best, bestSim = ci, sim
				}
			}
			h.clusters[best].members = append(h.clusters[best].members, vi)
		}

		var maxShift, totalShift float64
		moved := 0
		for ci := range h.clusters {
			c := &h.clusters[ci]
			if len(c.members) == 0 {
				continue
			}
			mean := make([]float32, h.dim)
			for _, vi := range c.members {
				for d, x := range h.vectors[vi].Vector {
					mean[d] += x
				}
			}
			inv := float32(1.0 / float64(len(c.members)))
			for d := range mean {
				mean[d] *= inv
			}
			shift := math.Sqrt(SquaredL2(c.centroid, mean))
			c.centroid = mean
			c.norm = Norm(mean)
			totalShift += shift
			moved++
			if shift > maxShift {
				maxShift = shift
			}
		}
		avgShift := 0.0
		if moved > 0 {
			avgShift = totalShift / float64(moved)
		}
		h.logger.Debug("k-means iteration",
			zap.Int("iteration", iter+1),
			zap.Float64("max_shift", maxShift),
			zap.Float64("avg_shift", avgShift))

		if maxShift < h.cfg.ConvergenceThreshold {
			h.logger.Debug("k-means converged", zap.Int("iterations", iter+1))
			break
		}
		if avgShift < h.cfg.ConvergenceThreshold/10 {
			stagnant++
			if stagnant >= stagnationLimit {
				h.logger.Debug("k-means stagnated, stopping early", zap.Int("iterations", iter+1))
				break
			}
		} else {
			stagnant = 0
		}
	}

	kept := h.clusters[:0]
	for _, c := range h.clusters {
		if len(c.members) > 0 {
			kept = append(kept, c)
		}
	}
	h.clusters = kept
}

// Search ranks clusters by centroid similarity, examines a level-dependent
// fraction of them, and re-ranks their members exactly.
func (h *HierarchicalIndex) Search(query []float32, k int) ([]SearchResult, error) {
	if len(h.vectors) == 0 {
		return []SearchResult{}, nil
	}
	if err := ValidateVector(query, h.dim); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []SearchResult{}, nil
	}
	key := queryKey(query, k, h.cfg.params())
	if cached, ok := h.cache.Get(key); ok {
		return copyResults(cached), nil
	}

	queryNorm := Norm(query)
	type rankedCluster struct {
		idx int
		sim float64
	}
	ranked := make([]rankedCluster, len(h.clusters))
	for i := range h.clusters {
		ranked[i] = rankedCluster{i, CosineSimilarity(query, h.clusters[i].centroid, queryNorm, h.clusters[i].norm)}
	}
	depth := int(float64(len(h.clusters)) * h.cfg.searchDepthFraction())
	if depth < 1 {
		depth = 1
	}
	top := TopK(ranked, depth, func(a, b rankedCluster) bool { return a.sim > b.sim })

	var candidates []int
	for _, rc := range top {
		candidates = append(candidates, h.clusters[rc.idx].members...)
	}
	results := h.scoreCandidates(query, queryNorm, candidates, k)
	h.cache.Set(key, copyResults(results))
	return results, nil
}

// scoreCandidates computes exact similarities for candidate vector indexes
// and returns the top k, ties broken by encounter order.
func (h *HierarchicalIndex) scoreCandidates(query []float32, queryNorm float64, candidates []int, k int) []SearchResult {
	type scored struct {
		vi    int
		order int
		sim   float64
	}
	scores := make([]scored, len(candidates))
	for i, vi := range candidates {
		scores[i] = scored{vi, i, CosineSimilarity(query, h.vectors[vi].Vector, queryNorm, h.norms[vi])}
	}
	top := TopK(scores, k, func(a, b scored) bool {
		if a.sim != b.sim {
			return a.sim > b.sim
		}
		return a.order < b.order
	})
	results := make([]SearchResult, len(top))
	for i, s := range top {
		v := h.vectors[s.vi]
		results[i] = SearchResult{ID: v.ID, SemanticID: v.SemanticID, Similarity: s.sim, Metadata: v.Metadata}
	}
	return results
}

// UpdateConfig swaps the configuration. The cache is cleared and the random
// source reseeded only when the config actually changed, so repeated updates
// with an identical config keep cached results warm.
func (h *HierarchicalIndex) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(h.logger); err != nil {
		return err
	}
	if h.cfg.Equal(cfg) {
		return nil
	}
	reseed := cfg.Seed != h.cfg.Seed
	resize := cfg.CacheSize != h.cfg.CacheSize
	h.cfg = cfg
	if resize {
		h.cache = NewResultCache(cfg.CacheSize)
	} else {
		h.cache.Clear()
	}
	if reseed {
		h.rng = NewRand(cfg.Seed)
		h.cfg.Seed = h.rng.Seed()
	}
	return nil
}

// Stats reports cluster structure and cache occupancy.
func (h *HierarchicalIndex) Stats() Stats {
	return Stats{
		Algorithm:     AlgorithmHierarchical,
		TotalVectors:  len(h.vectors),
		Dimensions:    h.dim,
		ClusterCount:  len(h.clusters),
		Iterations:    h.iterations,
		CacheEntries:  h.cache.Len(),
		CacheCapacity: h.cfg.CacheSize,
		Config:        h.cfg,
	}
}
