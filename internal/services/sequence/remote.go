package sequence

import (
	"context"
	"fmt"
	"math"
	"time"

	domsvc "PriceCast/internal/domain/service"
)

// Remote calls a TensorFlow Serving REST endpoint hosting the regressor.
type Remote struct {
	base     *HTTPServiceBase
	model    string
	steps    int
	features int
}

// NewRemote creates a remote model client. steps is the input length the
// served model was trained with.
func NewRemote(servingURL, model string, steps int, timeout time.Duration) (*Remote, error) {
	if servingURL == "" {
		return nil, fmt.Errorf("serving url is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if steps <= 0 {
		return nil, fmt.Errorf("input steps must be positive")
	}
	return &Remote{
		base:     NewHTTPServiceBase(servingURL, timeout),
		model:    model,
		steps:    steps,
		features: 1,
	}, nil
}

type predictReq struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResp struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

func (r *Remote) InputSteps() int { return r.steps }
func (r *Remote) Features() int   { return r.features }
func (r *Remote) Name() string    { return "tfserving:" + r.model }

// Predict sends one (steps, 1) instance and returns the single normalized output.
func (r *Remote) Predict(ctx context.Context, window [][]float64) (float64, error) {
	if err := checkWindow(window, r.steps, r.features); err != nil {
		return 0, err
	}

	var resp predictResp
	path := fmt.Sprintf("/v1/models/%s:predict", r.model)
	if err := r.base.PostJSON(ctx, path, predictReq{Instances: [][][]float64{window}}, &resp); err != nil {
		return 0, fmt.Errorf("remote predict: %w", err)
	}
	if resp.Error != "" {
		return 0, fmt.Errorf("remote predict: %s", resp.Error)
	}
	// The input was checked before the call, so a bad output shape means the
	// served model is not the one this process was configured for.
	if len(resp.Predictions) != 1 || len(resp.Predictions[0]) != 1 {
		return 0, fmt.Errorf("remote predict: unexpected output shape %s", outputShape(resp.Predictions))
	}
	y := resp.Predictions[0][0]
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("remote predict: non-finite output %v", y)
	}
	return y, nil
}

func outputShape(p [][]float64) string {
	if len(p) == 0 {
		return "0x0"
	}
	return fmt.Sprintf("%dx%d", len(p), len(p[0]))
}

var _ domsvc.SequenceModel = (*Remote)(nil)
