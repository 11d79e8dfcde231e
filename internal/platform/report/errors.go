package report

import "errors"

var (
	ErrNotConfigured   = errors.New("report generator is not configured")
	ErrEmptyResponse   = errors.New("report generator returned an empty response")
	ErrMalformedReport = errors.New("report is malformed")
	ErrMissingScore    = errors.New("report has no overallHealthScore")
)
