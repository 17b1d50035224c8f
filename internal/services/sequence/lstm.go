package sequence

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"PriceCast/internal/domain/models"
	domsvc "PriceCast/internal/domain/service"
)

// LayerSpec is one layer of a persisted Keras-style network.
// LSTM weights use gate order i, f, c, o:
// kernel is [input][4*units], recurrent_kernel is [units][4*units], bias is [4*units].
// Dense weights: kernel is [input][units], bias is [units].
type LayerSpec struct {
	Type            string      `json:"type"`
	Units           int         `json:"units"`
	ReturnSequences bool        `json:"return_sequences,omitempty"`
	Activation      string      `json:"activation,omitempty"`
	Kernel          [][]float64 `json:"kernel"`
	RecurrentKernel [][]float64 `json:"recurrent_kernel,omitempty"`
	Bias            []float64   `json:"bias"`
}

// NetworkSpec is the JSON weights artifact.
type NetworkSpec struct {
	Name       string      `json:"name"`
	InputSteps int         `json:"input_steps"`
	Features   int         `json:"features"`
	Layers     []LayerSpec `json:"layers"`
}

type layer struct {
	spec LayerSpec
	in   int
	act  func(float64) float64
}

// LSTM evaluates a stacked LSTM/Dense regressor in process.
// Weights are read-only after load, so Predict is safe for concurrent use.
type LSTM struct {
	name     string
	steps    int
	features int
	layers   []layer
}

// LoadLSTM reads and validates a weights artifact.
func LoadLSTM(path string) (*LSTM, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var spec NetworkSpec
	if err := json.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	m, err := NewLSTM(spec)
	if err != nil {
		return nil, fmt.Errorf("build model %s: %w", path, err)
	}
	return m, nil
}

// NewLSTM validates the layer chain and returns an evaluator.
func NewLSTM(spec NetworkSpec) (*LSTM, error) {
	if spec.InputSteps <= 0 {
		return nil, fmt.Errorf("input_steps must be positive")
	}
	if spec.Features <= 0 {
		return nil, fmt.Errorf("features must be positive")
	}
	if len(spec.Layers) == 0 {
		return nil, fmt.Errorf("no layers")
	}

	m := &LSTM{name: spec.Name, steps: spec.InputSteps, features: spec.Features}
	in := spec.Features
	sequenceOut := true
	for i, ls := range spec.Layers {
		if ls.Units <= 0 {
			return nil, fmt.Errorf("layer %d: units must be positive", i)
		}
		l := layer{spec: ls, in: in}
		switch ls.Type {
		case "lstm":
			if !sequenceOut {
				return nil, fmt.Errorf("layer %d: lstm after a non-sequence output", i)
			}
			if err := checkMatrix(ls.Kernel, in, 4*ls.Units, "kernel"); err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
			if err := checkMatrix(ls.RecurrentKernel, ls.Units, 4*ls.Units, "recurrent_kernel"); err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
			if len(ls.Bias) != 4*ls.Units {
				return nil, fmt.Errorf("layer %d: %w", i, &models.DimensionMismatchError{What: "bias", Expected: 4 * ls.Units, Got: len(ls.Bias)})
			}
			sequenceOut = ls.ReturnSequences
		case "dense":
			if sequenceOut {
				return nil, fmt.Errorf("layer %d: dense over a sequence is not supported", i)
			}
			if err := checkMatrix(ls.Kernel, in, ls.Units, "kernel"); err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
			if len(ls.Bias) != ls.Units {
				return nil, fmt.Errorf("layer %d: %w", i, &models.DimensionMismatchError{What: "bias", Expected: ls.Units, Got: len(ls.Bias)})
			}
			act, ok := activations[ls.Activation]
			if !ok {
				return nil, fmt.Errorf("layer %d: unknown activation %q", i, ls.Activation)
			}
			l.act = act
		default:
			return nil, fmt.Errorf("layer %d: unknown type %q", i, ls.Type)
		}
		m.layers = append(m.layers, l)
		in = ls.Units
	}
	if sequenceOut {
		return nil, fmt.Errorf("last layer returns a sequence")
	}
	if in != 1 {
		return nil, &models.DimensionMismatchError{What: "model output units", Expected: 1, Got: in}
	}
	return m, nil
}

func (m *LSTM) InputSteps() int { return m.steps }
func (m *LSTM) Features() int   { return m.features }
func (m *LSTM) Name() string    { return "lstm:" + m.name }

// Predict runs the forward pass over a (steps, features) window.
func (m *LSTM) Predict(ctx context.Context, window [][]float64) (float64, error) {
	if err := checkWindow(window, m.steps, m.features); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	seq := window
	var vec []float64
	for _, l := range m.layers {
		switch l.spec.Type {
		case "lstm":
			out := l.recur(seq)
			if l.spec.ReturnSequences {
				seq = out
			} else {
				vec = out[len(out)-1]
			}
		case "dense":
			vec = l.dense(vec)
		}
	}

	y := vec[0]
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("model produced non-finite output %v", y)
	}
	return y, nil
}

// recur returns the hidden state after every timestep.
func (l layer) recur(seq [][]float64) [][]float64 {
	u := l.spec.Units
	h := make([]float64, u)
	c := make([]float64, u)
	z := make([]float64, 4*u)
	out := make([][]float64, len(seq))
	for t, x := range seq {
		copy(z, l.spec.Bias)
		for i, xv := range x {
			row := l.spec.Kernel[i]
			for j := range z {
				z[j] += xv * row[j]
			}
		}
		for i, hv := range h {
			row := l.spec.RecurrentKernel[i]
			for j := range z {
				z[j] += hv * row[j]
			}
		}
		next := make([]float64, u)
		for k := 0; k < u; k++ {
			ig := sigmoid(z[k])
			fg := sigmoid(z[u+k])
			cg := math.Tanh(z[2*u+k])
			og := sigmoid(z[3*u+k])
			c[k] = fg*c[k] + ig*cg
			next[k] = og * math.Tanh(c[k])
		}
		h = next
		out[t] = next
	}
	return out
}

func (l layer) dense(x []float64) []float64 {
	out := make([]float64, l.spec.Units)
	copy(out, l.spec.Bias)
	for i, xv := range x {
		row := l.spec.Kernel[i]
		for j := range out {
			out[j] += xv * row[j]
		}
	}
	for j := range out {
		out[j] = l.act(out[j])
	}
	return out
}

var activations = map[string]func(float64) float64{
	"":        func(x float64) float64 { return x },
	"linear":  func(x float64) float64 { return x },
	"relu":    func(x float64) float64 { return math.Max(0, x) },
	"tanh":    math.Tanh,
	"sigmoid": sigmoid,
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func checkMatrix(m [][]float64, rows, cols int, what string) error {
	if len(m) != rows {
		return &models.DimensionMismatchError{What: what + " rows", Expected: rows, Got: len(m)}
	}
	for _, r := range m {
		if len(r) != cols {
			return &models.DimensionMismatchError{What: what + " cols", Expected: cols, Got: len(r)}
		}
	}
	return nil
}

// checkWindow validates a (steps, features) window before any evaluation.
func checkWindow(window [][]float64, steps, features int) error {
	if len(window) != steps {
		return &models.DimensionMismatchError{What: "window timesteps", Expected: steps, Got: len(window)}
	}
	for _, row := range window {
		if len(row) != features {
			return &models.DimensionMismatchError{What: "window features", Expected: features, Got: len(row)}
		}
	}
	return nil
}

var _ domsvc.SequenceModel = (*LSTM)(nil)
