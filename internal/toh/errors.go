package toh

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyResult = errors.New("no records match the query")
	ErrNotFound    = errors.New("record not found")
)

const (
	StageCache      = "cache"
	StageFetch      = "fetch"
	StageDecompress = "decompress"
	StageParse      = "parse"
)

// LoadError is returned when the hardware table cannot be fetched or read.
type LoadError struct {
	Stage string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load hardware table (%s): %v", e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(stage string, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	return &LoadError{Stage: stage, Err: err}
}
