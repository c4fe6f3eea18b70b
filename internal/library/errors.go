package library

import (
	"errors"
	"fmt"
)

// ErrEmptyLibrary is returned when a match is requested from a library with
// no tiles.
var ErrEmptyLibrary = errors.New("tile library is empty")

// TileLoadError reports a tile directory or tile image that could not be
// read while building a library. The build is abandoned when it occurs.
type TileLoadError struct {
	Path string
	Err  error
}

func (e *TileLoadError) Error() string {
	return fmt.Sprintf("failed to load tile %s: %v", e.Path, e.Err)
}

func (e *TileLoadError) Unwrap() error { return e.Err }

// TileDecodeError reports a thumbnail that was missing or corrupt when the
// composer asked for its bitmap.
type TileDecodeError struct {
	Path string
	Err  error
}

func (e *TileDecodeError) Error() string {
	return fmt.Sprintf("failed to decode tile thumbnail %s: %v", e.Path, e.Err)
}

func (e *TileDecodeError) Unwrap() error { return e.Err }
