package plonk

import (
	"fmt"
	"runtime"
)

// ProverOption configures one Prove call.
type ProverOption func(*proverConfig) error

type proverConfig struct {
	nbTasks int
}

func newProverConfig(opts ...ProverOption) (proverConfig, error) {
	cfg := proverConfig{nbTasks: runtime.NumCPU()}
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// WithNbTasks caps the goroutines used by the prover's row-parallel loops.
// The default is runtime.NumCPU.
func WithNbTasks(n int) ProverOption {
	return func(cfg *proverConfig) error {
		if n < 1 {
			return fmt.Errorf("plonk: nbTasks must be at least 1, got %d", n)
		}
		cfg.nbTasks = n
		return nil
	}
}
