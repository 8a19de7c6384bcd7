package dataset

import "fmt"

// DataSourceError reports a source that is missing, unreadable or malformed.
// It is fatal for the pipeline: nothing downstream should render.
type DataSourceError struct {
	Source string
	Reason string
	Err    error
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data source %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("data source %s: %s", e.Source, e.Reason)
}

func (e *DataSourceError) Unwrap() error { return e.Err }
