package extraction

import "errors"

var (
	// ErrUnsupportedFormat is returned for inputs that would need OCR or are not text.
	ErrUnsupportedFormat = errors.New("extraction: unsupported document format")
	// ErrEmptyChart is returned when a chart of accounts has no usable accounts.
	ErrEmptyChart = errors.New("extraction: chart of accounts is empty")
)
