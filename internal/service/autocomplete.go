package service

import (
	"sort"
	"strings"

	"docsearch/internal/model"
)

// rankCandidates orders autocomplete suggestions for a prefix. Candidates
// whose text starts with the prefix come first, shorter texts before longer
// ones, ties broken alphabetically. Comparison is case-insensitive and the
// sort is stable, so equal candidates keep their input order and repeated
// calls give identical output.
func rankCandidates(candidates []model.AutocompleteCandidate, prefix string) []model.AutocompleteCandidate {
	lowered := strings.ToLower(prefix)
	sort.SliceStable(candidates, func(i, j int) bool {
		a := strings.ToLower(candidates[i].Text)
		b := strings.ToLower(candidates[j].Text)

		aPrefix := strings.HasPrefix(a, lowered)
		bPrefix := strings.HasPrefix(b, lowered)
		if aPrefix != bPrefix {
			return aPrefix
		}
		if aPrefix && bPrefix && len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return candidates
}

func toCandidates(values []string, field string) []model.AutocompleteCandidate {
	out := make([]model.AutocompleteCandidate, 0, len(values))
	for _, v := range values {
		out = append(out, model.AutocompleteCandidate{Text: v, Field: field})
	}
	return out
}
