package dataset

import "fmt"

// MissingColumnError indicates a required column is absent from a table or record.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// ShapeError indicates a row does not match the table header.
type ShapeError struct {
	Row    int
	Got    int
	Expect int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("row %d has %d fields, header has %d", e.Row, e.Got, e.Expect)
}
