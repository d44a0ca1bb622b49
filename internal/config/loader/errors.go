package loader

// lineError carries the line of a decode failure up to ParseError.
type lineError struct {
	line int
	err  error
}

func (e *lineError) Error() string {
	return e.err.Error()
}

func (e *lineError) Unwrap() error {
	return e.err
}
