// Package strings provides small string-slice helpers shared across the
// pipeline.
package strings

import "strings"

// Dedupe drops duplicates and blank entries from values, trimming whitespace
// from each element. First-seen order is preserved, which keeps merged
// phone/email lists deterministic for a given input ordering.
func Dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// DedupeLower is Dedupe with case-insensitive comparison; elements are
// lowercased in the result. Used for email lists.
func DedupeLower(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
