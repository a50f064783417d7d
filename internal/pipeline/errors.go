package pipeline

import "errors"

var (
	// ErrEmptySelection means no symbol was requested; nothing is fetched.
	ErrEmptySelection = errors.New("no symbols selected")
	// ErrMissingData means the data source returned no rows for the request.
	ErrMissingData = errors.New("no data for the selected symbols and date range")
	// ErrInvalidRange means the start date is after the end date.
	ErrInvalidRange = errors.New("start date is after end date")
)
