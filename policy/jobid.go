package policy

import (
	"strconv"
	"strings"
)

// ParseJobID parses a remote job identifier. Identifiers are non-negative
// integers; anything else is a *ConfigError.
func ParseJobID(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, &ConfigError{Field: "job_id", Value: s, Reason: "must be an integer"}
	}
	if id < 0 {
		return 0, &ConfigError{Field: "job_id", Value: s, Reason: "must not be negative"}
	}
	return id, nil
}
