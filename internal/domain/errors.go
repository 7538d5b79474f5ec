package domain

import "fmt"

// ParseError reports that a document could not be parsed at all.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location(), e.Message)
}

// Location returns where the parser gave up.
func (e *ParseError) Location() Location {
	return Location{File: e.File, Line: e.Line, Column: e.Column}
}

// WriteError reports that a payload schema could not be exported.
// It aborts the remaining traversal of the file being linted.
type WriteError struct {
	File string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing schema %s for %s: %v", e.Path, e.File, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
