package sequence

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"PriceCast/internal/domain/models"
)

func TestRemotePredict(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/v1/models/close_lstm:predict" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req predictReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Instances) != 1 || len(req.Instances[0]) != 3 || len(req.Instances[0][0]) != 1 {
			t.Errorf("unexpected instance shape %v", req.Instances)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"predictions": [][]float64{{0.42}}})
	}))
	defer srv.Close()

	m, err := NewRemote(srv.URL, "close_lstm", 3, time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := m.Predict(context.Background(), column(0.1, 0.2, 0.3))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(got-0.42) > 1e-12 {
		t.Fatalf("expected 0.42, got %v", got)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}

func TestRemoteRejectsShapeWithoutCalling(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	m, _ := NewRemote(srv.URL, "m", 3, time.Second)
	if _, err := m.Predict(context.Background(), column(0.1, 0.2)); !errors.Is(err, models.ErrDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("server should not be called")
	}
}

func TestRemoteErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		mismatch bool
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, false},
		{"error field", http.StatusOK, `{"error":"model not loaded"}`, false},
		{"two predictions", http.StatusOK, `{"predictions":[[0.1],[0.2]]}`, false},
		{"two units", http.StatusOK, `{"predictions":[[0.1,0.2]]}`, false},
		{"no predictions", http.StatusOK, `{"predictions":[]}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			m, _ := NewRemote(srv.URL, "m", 1, time.Second)
			_, err := m.Predict(context.Background(), column(0.5))
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errors.Is(err, models.ErrDimensionMismatch); got != tt.mismatch {
				t.Fatalf("mismatch=%v, err=%v", got, err)
			}
		})
	}
}

func TestNewRemoteValidation(t *testing.T) {
	if _, err := NewRemote("", "m", 60, 0); err == nil {
		t.Fatalf("expected url error")
	}
	if _, err := NewRemote("http://x", "", 60, 0); err == nil {
		t.Fatalf("expected name error")
	}
	if _, err := NewRemote("http://x", "m", 0, 0); err == nil {
		t.Fatalf("expected steps error")
	}
}
