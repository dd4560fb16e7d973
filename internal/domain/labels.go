package domain

import "strings"

// LabelSeparator joins normalized label lists.
const LabelSeparator = ", "

// SplitLabels splits a comma-separated label string into trimmed, non-empty,
// de-duplicated labels in first-seen order. Both ASCII and full-width commas
// separate labels.
func SplitLabels(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '，'
	})

	seen := make(map[string]struct{}, len(fields))
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		label := strings.TrimSpace(f)
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

// JoinLabels is the inverse of SplitLabels.
func JoinLabels(labels []string) string {
	return strings.Join(labels, LabelSeparator)
}

// NormalizeLabels returns the canonical form of a label string.
func NormalizeLabels(s string) string {
	return JoinLabels(SplitLabels(s))
}

// MergeLabels adds and removes labels from an existing label string.
// Removal wins when a label appears in both add and remove.
func MergeLabels(existing, add, remove string) string {
	drop := make(map[string]struct{})
	for _, l := range SplitLabels(remove) {
		drop[l] = struct{}{}
	}

	combined := SplitLabels(existing + "," + add)
	kept := combined[:0]
	for _, l := range combined {
		if _, ok := drop[l]; !ok {
			kept = append(kept, l)
		}
	}
	return JoinLabels(kept)
}
