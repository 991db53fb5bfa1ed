package routepath

import (
	"net/url"
	"strings"
)

// SplitPathAndQuery splits a URL into its path and query string.
// The query string is returned without the leading "?".
func SplitPathAndQuery(rawURL string) (path, query string) {
	path, query, _ = strings.Cut(rawURL, "?")
	return path, query
}

// ParseQuery parses a raw query string into a flat map.
//
// Pairs are split on "&", keys from values on the first "=". A pair without
// "=" yields an empty value. Empty pairs and pairs with empty keys are
// skipped. When a key repeats, the last occurrence wins. Keys and values are
// percent-decoded with "+" left intact; pieces that fail to decode are kept
// as-is rather than dropping the pair.
//
// The result is never nil.
func ParseQuery(rawQuery string) map[string]string {
	query := make(map[string]string)
	if rawQuery == "" {
		return query
	}
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		if decoded, err := url.PathUnescape(key); err == nil {
			key = decoded
		}
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		query[key] = value
	}
	return query
}
