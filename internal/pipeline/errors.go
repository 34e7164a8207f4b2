package pipeline

import "fmt"

// InvalidParameterError reports bad input. It is fatal and raised before any
// network call.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// FetchError marks a page that could not be fetched after retries. The run
// records the gap and continues with the next page.
type FetchError struct {
	Page  QueryPage
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("page offset=%d limit=%d: %v", e.Page.Offset, e.Page.Limit, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }
