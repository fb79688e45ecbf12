package extract

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnsupportedFormat       Kind = "unsupported_format"
	KindTooLarge                Kind = "too_large"
	KindCorruptArchive          Kind = "corrupt_archive"
	KindAmbiguousOrMissingTable Kind = "ambiguous_or_missing_table"
	KindMalformedTable          Kind = "malformed_table"
	KindMissingColumn           Kind = "missing_column"
	KindEmptyTable              Kind = "empty_table"
)

// Error is the only error type Extract returns.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "extract: " + string(e.Kind)
	}
	return fmt.Sprintf("extract: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the text shown to the caller.
func (e *Error) Message() string {
	switch e.Kind {
	case KindUnsupportedFormat:
		return "Only ZIP files are supported."
	case KindTooLarge:
		return "File too large."
	case KindCorruptArchive:
		return "Invalid ZIP file format."
	case KindAmbiguousOrMissingTable:
		return "ZIP must contain exactly one CSV file."
	case KindMissingColumn:
		return "'" + AnswerColumn + "' column not found in CSV."
	case KindEmptyTable:
		return "CSV contains no data rows."
	case KindMalformedTable:
		if e.Err != nil {
			return "File processing error: " + e.Err.Error()
		}
		return "File processing error."
	default:
		return "File processing error."
	}
}

// KindOf returns the kind of an extraction error, or "" for anything else.
func KindOf(err error) Kind {
	var extractErr *Error
	if errors.As(err, &extractErr) {
		return extractErr.Kind
	}
	return ""
}
