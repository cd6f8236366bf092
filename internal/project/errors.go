package project

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a project id is not in the registry.
var ErrNotFound = errors.New("project not found")

// LoadError reports a data file that exists in the metadata but could not
// be read or is malformed.
type LoadError struct {
	Project string
	Kind    Kind
	Key     string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s for project %s (%s): %v", e.Kind, e.Project, e.Key, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
