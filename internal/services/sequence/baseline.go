package sequence

import (
	"encoding/json"
	"fmt"
	"os"
)

// Persistence network constants. Input and output gates are held open and
// the forget gate shut, so the cell only sees the last timestep. A small
// input gain keeps tanh(tanh(gain*x)) close to gain*x on [0, 1] and the
// dense layer undoes the gain.
const (
	persistenceGain = 0.1
	gateSaturation  = 10.0
)

// PersistenceSpec returns a one-unit LSTM whose output tracks the last
// normalized close of the window (within 1% on [0, 1]). It is the
// naive-forecast baseline used until a trained artifact is exported.
func PersistenceSpec(steps int) NetworkSpec {
	return NetworkSpec{
		Name:       "persistence_baseline",
		InputSteps: steps,
		Features:   1,
		Layers: []LayerSpec{
			{
				Type:            "lstm",
				Units:           1,
				Kernel:          [][]float64{{0, 0, persistenceGain, 0}},
				RecurrentKernel: [][]float64{{0, 0, 0, 0}},
				Bias:            []float64{gateSaturation, -gateSaturation, 0, gateSaturation},
			},
			{
				Type:       "dense",
				Units:      1,
				Activation: "linear",
				Kernel:     [][]float64{{1 / persistenceGain}},
				Bias:       []float64{0},
			},
		},
	}
}

// SaveSpec validates spec and writes it as a weights artifact.
func SaveSpec(path string, spec NetworkSpec) error {
	if _, err := NewLSTM(spec); err != nil {
		return fmt.Errorf("invalid network: %w", err)
	}
	b, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}
