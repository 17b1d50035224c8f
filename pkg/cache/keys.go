package cache

import (
	"strings"
)

// SeriesKey is the key under which a provider's price history is cached.
// Symbols are case-insensitive at the provider so they are normalized here.
func SeriesKey(provider, symbol, period string) string {
	return strings.Join([]string{"series", provider, strings.ToUpper(strings.TrimSpace(symbol)), period}, ":")
}
