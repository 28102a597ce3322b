package vector

import "go.uber.org/zap"

// NewIndex validates cfg and returns the index implementation it selects.
// Unknown algorithm names return ErrUnsupportedAlgorithm.
func NewIndex(cfg Config, logger *zap.Logger) (Index, error) {
	if err := cfg.Validate(logger); err != nil {
		return nil, err
	}
	switch cfg.Algorithm {
	case AlgorithmHierarchical:
		return NewHierarchicalIndex(cfg, logger), nil
	case AlgorithmLSH:
		return NewLSHIndex(cfg, logger), nil
	case AlgorithmHybrid:
		return NewHybridIndex(cfg, logger), nil
	default:
		// Unreachable after Validate, kept so the switch is total.
		return nil, ErrUnsupportedAlgorithm
	}
}
