package pipeline

import "github.com/jonathan/job-outreach/internal/types"

// FilterByStatus returns copies of the non-blank rows whose Status is one of statuses, in table order.
func FilterByStatus(t *types.Table, statuses ...types.Status) []types.Lead {
	want := make(map[types.Status]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	return Select(t, func(l types.Lead) bool {
		return want[l.Status()]
	})
}

// Select returns copies of the non-blank rows matching pred, in table order.
// Mutating the result never changes t; write back with t.Merge.
func Select(t *types.Table, pred func(types.Lead) bool) []types.Lead {
	var out []types.Lead
	for _, l := range t.Rows {
		if l.IsBlank() || !pred(l) {
			continue
		}
		out = append(out, l.Clone())
	}
	return out
}
