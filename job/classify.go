package job

// IsTerminal reports whether the job will not transition further.
func IsTerminal(s Status) bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsSuccess reports whether s is exactly StatusSucceeded.
func IsSuccess(s Status) bool {
	return s == StatusSucceeded
}

// FailureSummaries collects every non-empty attempt failure summary in
// attempt order.
func FailureSummaries(snap Snapshot) []string {
	var out []string
	for _, a := range snap.Attempts {
		if a.FailureSummary == "" {
			continue
		}
		out = append(out, a.FailureSummary)
	}
	return out
}
