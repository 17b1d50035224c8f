package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestForecastJSONAsOf(t *testing.T) {
	generated := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	withValue := &Forecast{Symbol: "AAPL", Stage: StageDone, AsOf: &asOf, GeneratedAt: generated}
	withValue.SetValue(190.5)

	tests := []struct {
		name string
		f    *Forecast
		want string
		omit string
	}{
		{
			name: "empty history omits as_of",
			f:    &Forecast{Symbol: "ZZZZ", Stage: StageError, Reason: ReasonEmptyHistory, GeneratedAt: generated},
			want: `"prediction":null`,
			omit: `"as_of"`,
		},
		{
			name: "observed history carries as_of",
			f:    withValue,
			want: `"as_of":"2024-05-31T00:00:00Z"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.f)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !strings.Contains(string(b), tt.want) {
				t.Fatalf("json %s missing %s", b, tt.want)
			}
			if tt.omit != "" && strings.Contains(string(b), tt.omit) {
				t.Fatalf("json %s should not contain %s", b, tt.omit)
			}
		})
	}
}
