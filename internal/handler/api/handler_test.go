package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"PriceCast/internal/domain/models"
	"PriceCast/internal/service/ratelimit"
	xhttp "PriceCast/pkg/http"
)

type fakeForecaster struct {
	f     *models.Forecast
	err   error
	calls []string
}

func (f *fakeForecaster) Forecast(_ context.Context, symbol string) (*models.Forecast, error) {
	f.calls = append(f.calls, symbol)
	if f.err != nil {
		return nil, f.err
	}
	out := *f.f
	out.Symbol = symbol
	return &out, nil
}

func predicted(v float64) *models.Forecast {
	f := &models.Forecast{Period: "6mo", Steps: 60, Stage: models.StageDone, Observed: 126, Model: "lstm_model"}
	f.SetValue(v)
	return f
}

func newEcho(handlers ...xhttp.Handler) *echo.Echo {
	e := echo.New()
	for _, h := range handlers {
		h.RegisterRoutes(e)
	}
	return e
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestForecastAPI(t *testing.T) {
	providerErr := &models.ProviderError{Provider: "yahoo", Symbol: "AAPL", Err: errors.New("status 503")}

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		svc        *fakeForecaster
		wantStatus int
		wantCalls  int
	}{
		{"get ok", http.MethodGet, "/api/forecast?symbol=AAPL", "", &fakeForecaster{f: predicted(190.1234)}, http.StatusOK, 1},
		{"post ok", http.MethodPost, "/api/forecast", `{"symbol":"MSFT"}`, &fakeForecaster{f: predicted(410)}, http.StatusOK, 1},
		{"missing symbol", http.MethodGet, "/api/forecast", "", &fakeForecaster{f: predicted(1)}, http.StatusBadRequest, 0},
		{"bad characters", http.MethodGet, "/api/forecast?symbol=A%24B", "", &fakeForecaster{f: predicted(1)}, http.StatusBadRequest, 0},
		{"too long", http.MethodGet, "/api/forecast?symbol=ABCDEFGHIJKLMNOP", "", &fakeForecaster{f: predicted(1)}, http.StatusBadRequest, 0},
		{"provider failure", http.MethodGet, "/api/forecast?symbol=AAPL", "", &fakeForecaster{err: providerErr}, http.StatusBadGateway, 1},
		{"model failure", http.MethodGet, "/api/forecast?symbol=AAPL", "", &fakeForecaster{err: errors.New("boom")}, http.StatusInternalServerError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho(NewForecastEchoHandler(nil, tt.svc, nil))
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
				req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if len(tt.svc.calls) != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", len(tt.svc.calls), tt.wantCalls)
			}
			env := decodeEnvelope(t, rec)
			if env.Status != tt.wantStatus {
				t.Fatalf("envelope status = %d, want %d", env.Status, tt.wantStatus)
			}
		})
	}
}

func TestForecastAPIProviderErrorCode(t *testing.T) {
	svc := &fakeForecaster{err: &models.ProviderError{Provider: "yahoo", Symbol: "AAPL", Err: errors.New("timeout")}}
	e := newEcho(NewForecastEchoHandler(nil, svc, nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forecast?symbol=AAPL", nil))

	var errs []xhttp.AppError
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &errs); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	if len(errs) != 1 || errs[0].Code != "ERR_UPSTREAM" {
		t.Fatalf("errors = %+v", errs)
	}
}

func TestForecastAPINoPredictionIsOK(t *testing.T) {
	svc := &fakeForecaster{f: &models.Forecast{Stage: models.StageDone, Reason: models.ReasonInsufficientHistory}}
	e := newEcho(NewForecastEchoHandler(nil, svc, nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forecast?symbol=NEWCO", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if v, ok := got["prediction"]; !ok || v != nil {
		t.Fatalf("prediction = %v (present %v), want null", v, ok)
	}
	if got["reason"] != models.ReasonInsufficientHistory {
		t.Fatalf("reason = %v", got["reason"])
	}
}

func TestForecastAPIRateLimited(t *testing.T) {
	svc := &fakeForecaster{f: predicted(1)}
	e := newEcho(NewForecastEchoHandler(nil, svc, ratelimit.Middleware(ratelimit.New(0, 1))))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forecast?symbol=AAPL", nil))
		if rec.Code != want {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, want)
		}
	}
	if len(svc.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(svc.calls))
	}
}

func postForm(e *echo.Echo, ticker string) *httptest.ResponseRecorder {
	form := url.Values{"ticker": {ticker}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPage(t *testing.T) {
	t.Run("index", func(t *testing.T) {
		e := newEcho(NewPageHandler(nil, &fakeForecaster{}, nil))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="ticker"`) {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rounded prediction", func(t *testing.T) {
		e := newEcho(NewPageHandler(nil, &fakeForecaster{f: predicted(190.1267)}, nil))
		rec := postForm(e, "AAPL")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "190.13") {
			t.Fatalf("body missing rounded value: %s", rec.Body.String())
		}
	})

	t.Run("no prediction", func(t *testing.T) {
		svc := &fakeForecaster{f: &models.Forecast{Stage: models.StageDone, Reason: models.ReasonEmptyHistory}}
		e := newEcho(NewPageHandler(nil, svc, nil))
		rec := postForm(e, "ZZZZ")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "No prediction available") {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid ticker", func(t *testing.T) {
		svc := &fakeForecaster{f: predicted(1)}
		e := newEcho(NewPageHandler(nil, svc, nil))
		rec := postForm(e, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(svc.calls) != 0 {
			t.Fatalf("service called for invalid ticker")
		}
	})

	t.Run("provider failure", func(t *testing.T) {
		svc := &fakeForecaster{err: &models.ProviderError{Provider: "yahoo", Symbol: "AAPL", Err: errors.New("down")}}
		e := newEcho(NewPageHandler(nil, svc, nil))
		rec := postForm(e, "AAPL")
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	e := newEcho(NewHealthHandler(xhttp.HealthResponse{Provider: "yahoo", Model: "lstm_model", Recorder: "sqlite", Steps: 60, Period: "6mo"}))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got xhttp.HealthResponse
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" || got.Provider != "yahoo" || got.Recorder != "sqlite" {
		t.Fatalf("got %+v", got)
	}
}

type fakeHistory struct {
	rows   []*models.Forecast
	err    error
	symbol string
	limit  int
}

func (f *fakeHistory) Recent(_ context.Context, symbol string, limit int) ([]*models.Forecast, error) {
	f.symbol, f.limit = symbol, limit
	return f.rows, f.err
}

func TestHistory(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		reader     *fakeHistory
		wantStatus int
		wantLimit  int
		wantRows   int
	}{
		{"default limit", "/api/forecasts/recent?symbol=AAPL", &fakeHistory{rows: []*models.Forecast{predicted(1), predicted(2)}}, http.StatusOK, 10, 2},
		{"explicit limit", "/api/forecasts/recent?symbol=AAPL&limit=1", &fakeHistory{rows: []*models.Forecast{predicted(1)}}, http.StatusOK, 1, 1},
		{"empty is a list", "/api/forecasts/recent?symbol=AAPL", &fakeHistory{}, http.StatusOK, 10, 0},
		{"limit too large", "/api/forecasts/recent?symbol=AAPL&limit=500", &fakeHistory{}, http.StatusBadRequest, 0, 0},
		{"missing symbol", "/api/forecasts/recent", &fakeHistory{}, http.StatusBadRequest, 0, 0},
		{"store failure", "/api/forecasts/recent?symbol=AAPL", &fakeHistory{err: errors.New("disk")}, http.StatusInternalServerError, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho(NewHistoryHandler(nil, tt.reader))
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.reader.limit != tt.wantLimit {
				t.Fatalf("limit = %d, want %d", tt.reader.limit, tt.wantLimit)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var rows []*models.Forecast
			if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &rows); err != nil {
				t.Fatalf("decode rows: %v", err)
			}
			if rows == nil || len(rows) != tt.wantRows {
				t.Fatalf("rows = %v, want %d", rows, tt.wantRows)
			}
		})
	}
}
