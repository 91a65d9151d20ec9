// File: internal/infra/metrics/metrics.go
package metrics

import "strings"

// norm keeps label cardinality in check: lower-case, no spaces, bounded length.
func norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	if len(s) > 64 {
		s = s[:64]
	}
	if s == "" {
		s = "unknown"
	}
	return s
}
