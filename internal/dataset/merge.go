package dataset

// MergeStackTraces joins stack traces with bug reports by filename, in stack
// trace order. Stack traces without a matching bug report are dropped; when a
// filename has several bug reports the last one wins.
func MergeStackTraces(traces []StackTraceEntry, reports []BugReportEntry) []MergedEntry {
	byName := make(map[string]BugReportEntry, len(reports))
	for _, r := range reports {
		byName[r.Filename] = r
	}

	merged := make([]MergedEntry, 0, len(traces))
	for _, st := range traces {
		r, ok := byName[st.Filename]
		if !ok {
			continue
		}
		merged = append(merged, MergedEntry{
			Filename:     st.Filename,
			CreationTime: st.CreationTime,
			StackTrace:   st.StackTrace,
			BugReport:    r.BugReport,
		})
	}
	return merged
}
