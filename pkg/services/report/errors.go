package report

import "errors"

// ErrUnsupportedReportType is returned when a requested report type has no
// registered query strategy. It indicates a caller or configuration bug and
// is never retried or swallowed.
var ErrUnsupportedReportType = errors.New("unsupported report type")
