package curve

import "fmt"

// InvalidSampleCountError indicates a series with fewer than two samples.
type InvalidSampleCountError struct {
	N int
}

func (e *InvalidSampleCountError) Error() string {
	return fmt.Sprintf("invalid sample count %d: at least 2 samples are required", e.N)
}
