package fuse

import (
	fuseerrors "github.com/FocuswithJustin/fusepatch/core/errors"
)

// SelectRecords returns the body indices of the record lines: 0, recurrence,
// 2*recurrence and so on, strictly below bodyLen-skipLastRows.
// Skipping the whole body or more yields an empty selection.
func SelectRecords(bodyLen, recurrence, skipLastRows int) ([]int, error) {
	if recurrence < 1 {
		return nil, fuseerrors.NewConfig("hex_recurrence", recurrence, "must be at least 1")
	}
	if skipLastRows < 0 {
		return nil, fuseerrors.NewConfig("skip_last_rows", skipLastRows, "must not be negative")
	}

	limit := bodyLen - skipLastRows
	if limit <= 0 {
		return []int{}, nil
	}
	indices := make([]int, 0, RecordCount(bodyLen, recurrence, skipLastRows))
	for i := 0; i < limit; i += recurrence {
		indices = append(indices, i)
	}
	return indices, nil
}

// RecordCount returns ceil(max(bodyLen-skipLastRows, 0) / recurrence).
// It returns 0 for a recurrence below 1.
func RecordCount(bodyLen, recurrence, skipLastRows int) int {
	if recurrence < 1 {
		return 0
	}
	limit := bodyLen - skipLastRows
	if limit <= 0 {
		return 0
	}
	return (limit + recurrence - 1) / recurrence
}
