package etl

import "fmt"

// FetchError reports a failed download. StatusCode is zero when the
// transport failed before a response arrived.
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("fetch %s: http %d: %s", e.URL, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("fetch %s: http %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports malformed or unsupported input, including values that
// cannot be coerced during normalization.
type ParseError struct {
	Format string
	Column string
	Row    int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("parse %s: column %q row %d: %v", e.Format, e.Column, e.Row, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadError reports a failed database write. Lo and Hi are the row range of
// the failing chunk; both are zero when the schema write failed.
type LoadError struct {
	Table string
	Lo    int
	Hi    int
	Err   error
}

func (e *LoadError) Error() string {
	if e.Hi > 0 {
		return fmt.Sprintf("load %s rows %d to %d: %v", e.Table, e.Lo, e.Hi, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
