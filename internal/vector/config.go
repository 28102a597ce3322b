package vector

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Algorithm selects a concrete index implementation.
type Algorithm string

const (
	AlgorithmHierarchical Algorithm = "hierarchical"
	AlgorithmLSH          Algorithm = "lsh"
	AlgorithmHybrid       Algorithm = "hybrid"
)

// ApproximationLevel trades search breadth (recall) for latency.
type ApproximationLevel string

const (
	ApproximationFast     ApproximationLevel = "fast"
	ApproximationBalanced ApproximationLevel = "balanced"
	ApproximationAccurate ApproximationLevel = "accurate"
)

// Config holds every tunable of the ANN subsystem.
type Config struct {
	Algorithm            Algorithm          `yaml:"algorithm" json:"algorithm"`
	ClusterCount         int                `yaml:"cluster_count" json:"cluster_count"`
	HashBits             int                `yaml:"hash_bits" json:"hash_bits"`
	ApproximationLevel   ApproximationLevel `yaml:"approximation_level" json:"approximation_level"`
	CacheSize            int                `yaml:"cache_size" json:"cache_size"`
	MaxIterations        int                `yaml:"max_iterations" json:"max_iterations"`
	ConvergenceThreshold float64            `yaml:"convergence_threshold" json:"convergence_threshold"`
	TableMultiplier      float64            `yaml:"table_multiplier" json:"table_multiplier"`
	HierarchicalWeight   float64            `yaml:"hierarchical_weight" json:"hierarchical_weight"`
	LSHWeight            float64            `yaml:"lsh_weight" json:"lsh_weight"`
	// Seed drives all randomness in the index. 0 means "draw from entropy
	// at construction"; set it explicitly for reproducible builds.
	Seed int64 `yaml:"seed" json:"seed"`
}

// Bounds enforced by Validate.
const (
	minClusterCount = 1
	maxClusterCount = 1000
	minHashBits     = 4
	maxHashBits     = 64
	minCacheSize    = 10
	maxCacheSize    = 100000
	maxKMeansIters  = 1000
)

// DefaultConfig returns the defaults applied for omitted fields.
func DefaultConfig() Config {
	return Config{
		Algorithm:            AlgorithmHierarchical,
		ClusterCount:         32,
		HashBits:             16,
		ApproximationLevel:   ApproximationBalanced,
		CacheSize:            1000,
		MaxIterations:        50,
		ConvergenceThreshold: 0.001,
		TableMultiplier:      1.0,
		HierarchicalWeight:   0.6,
		LSHWeight:            0.4,
	}
}

// ApplyDefaults fills zero values in cfg from DefaultConfig. Weights are
// defaulted as a pair so a config naming only one of them still validates.
func ApplyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Algorithm == "" {
		cfg.Algorithm = def.Algorithm
	}
	if cfg.ClusterCount == 0 {
		cfg.ClusterCount = def.ClusterCount
	}
	if cfg.HashBits == 0 {
		cfg.HashBits = def.HashBits
	}
	if cfg.ApproximationLevel == "" {
		cfg.ApproximationLevel = def.ApproximationLevel
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.ConvergenceThreshold == 0 {
		cfg.ConvergenceThreshold = def.ConvergenceThreshold
	}
	if cfg.TableMultiplier == 0 {
		cfg.TableMultiplier = def.TableMultiplier
	}
	if cfg.HierarchicalWeight == 0 && cfg.LSHWeight == 0 {
		cfg.HierarchicalWeight = def.HierarchicalWeight
		cfg.LSHWeight = def.LSHWeight
	}
}

// Validate applies defaults, bounds-checks every field, and renormalizes
// hybrid weights that drift from summing to 1 (a diagnostic is logged rather
// than an error raised, since the condition is self-correcting). All other
// violations return ErrInvalidConfiguration naming the field and value.
func (c *Config) Validate(logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ApplyDefaults(c)

	switch c.Algorithm {
	case AlgorithmHierarchical, AlgorithmLSH, AlgorithmHybrid:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, c.Algorithm)
	}
	switch c.ApproximationLevel {
	case ApproximationFast, ApproximationBalanced, ApproximationAccurate:
	default:
		return fmt.Errorf("%w: approximation_level: %q", ErrInvalidConfiguration, c.ApproximationLevel)
	}
	if c.ClusterCount < minClusterCount || c.ClusterCount > maxClusterCount {
		return fmt.Errorf("%w: cluster_count: %d (must be %d-%d)", ErrInvalidConfiguration, c.ClusterCount, minClusterCount, maxClusterCount)
	}
	if c.HashBits < minHashBits || c.HashBits > maxHashBits {
		return fmt.Errorf("%w: hash_bits: %d (must be %d-%d)", ErrInvalidConfiguration, c.HashBits, minHashBits, maxHashBits)
	}
	if c.CacheSize < minCacheSize || c.CacheSize > maxCacheSize {
		return fmt.Errorf("%w: cache_size: %d (must be %d-%d)", ErrInvalidConfiguration, c.CacheSize, minCacheSize, maxCacheSize)
	}
	if c.MaxIterations < 1 || c.MaxIterations > maxKMeansIters {
		return fmt.Errorf("%w: max_iterations: %d (must be 1-%d)", ErrInvalidConfiguration, c.MaxIterations, maxKMeansIters)
	}
	if c.ConvergenceThreshold <= 0 || math.IsNaN(c.ConvergenceThreshold) {
		return fmt.Errorf("%w: convergence_threshold: %v (must be > 0)", ErrInvalidConfiguration, c.ConvergenceThreshold)
	}
	if c.TableMultiplier <= 0 || math.IsNaN(c.TableMultiplier) {
		return fmt.Errorf("%w: table_multiplier: %v (must be > 0)", ErrInvalidConfiguration, c.TableMultiplier)
	}
	if c.HierarchicalWeight < 0 || c.HierarchicalWeight > 1 {
		return fmt.Errorf("%w: hierarchical_weight: %v (must be in [0,1])", ErrInvalidConfiguration, c.HierarchicalWeight)
	}
	if c.LSHWeight < 0 || c.LSHWeight > 1 {
		return fmt.Errorf("%w: lsh_weight: %v (must be in [0,1])", ErrInvalidConfiguration, c.LSHWeight)
	}
	sum := c.HierarchicalWeight + c.LSHWeight
	if sum == 0 {
		return fmt.Errorf("%w: hybrid weights: both zero", ErrInvalidConfiguration)
	}
	if math.Abs(sum-1) > 1e-9 {
		logger.Warn("hybrid weights do not sum to 1, renormalizing",
			zap.Float64("hierarchical_weight", c.HierarchicalWeight),
			zap.Float64("lsh_weight", c.LSHWeight))
		c.HierarchicalWeight /= sum
		c.LSHWeight /= sum
	}
	return nil
}

// PerformanceWarnings returns non-fatal human-readable advisories about
// settings that are valid but likely to hurt latency or recall. It never
// blocks construction.
func (c *Config) PerformanceWarnings() []string {
	var warnings []string
	if c.ClusterCount > 200 {
		warnings = append(warnings, fmt.Sprintf("cluster count %d is unusually high; builds will be slow for small datasets", c.ClusterCount))
	}
	if c.HashBits > 32 {
		warnings = append(warnings, fmt.Sprintf("hash bits %d produce very sparse buckets; recall may drop sharply", c.HashBits))
	}
	if c.MaxIterations > 200 {
		warnings = append(warnings, fmt.Sprintf("max iterations %d rarely improves convergence beyond 100", c.MaxIterations))
	}
	if c.Algorithm == AlgorithmHybrid && c.ApproximationLevel == ApproximationAccurate {
		warnings = append(warnings, "hybrid with accurate approximation doubles the widest search; consider balanced")
	}
	if c.CacheSize < 100 {
		warnings = append(warnings, fmt.Sprintf("cache size %d will thrash under repeated queries", c.CacheSize))
	}
	return warnings
}

// Equal reports whether two configurations are identical. Used by
// UpdateConfig to decide whether the cache must be invalidated.
func (c Config) Equal(other Config) bool {
	return c == other
}

// searchDepthFraction maps the approximation level to the fraction of
// clusters examined by the hierarchical index.
func (c *Config) searchDepthFraction() float64 {
	switch c.ApproximationLevel {
	case ApproximationFast:
		return 0.10
	case ApproximationAccurate:
		return 0.60
	default:
		return 0.30
	}
}

// baseTableCount maps the approximation level to the LSH table count before
// dataset scaling.
func (c *Config) baseTableCount() int {
	switch c.ApproximationLevel {
	case ApproximationFast:
		return 4
	case ApproximationAccurate:
		return 16
	default:
		return 8
	}
}

// params returns a compact encoding of the fields that affect result sets,
// used in cache keys.
func (c *Config) params() string {
	return fmt.Sprintf("%s:%s:%d:%d:%d", c.Algorithm, c.ApproximationLevel, c.ClusterCount, c.HashBits, c.Seed)
}
