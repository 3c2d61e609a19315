package config

import (
	"errors"
	"fmt"
)

var (
	errEmptyProject = errors.New("file is empty")
	errNotMapping   = errors.New("top level must be a mapping")
)

// ReadError reports a project config that could not be read, parsed or validated.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read config %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError reports a generated config that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write config %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
