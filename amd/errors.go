package amd

import "fmt"

// NonSquareError reports that Analyze was called on a non-square block.
type NonSquareError struct {
	NRows int
	NCols int
}

func (e *NonSquareError) Error() string {
	return fmt.Sprintf("amd: non-square block: %d rows, %d cols", e.NRows, e.NCols)
}
