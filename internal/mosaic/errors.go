package mosaic

import "fmt"

// InvalidExtensionError is returned when the source image is not a PNG or
// JPEG file. It is detected before any file is touched.
type InvalidExtensionError struct {
	Path string
}

func (e *InvalidExtensionError) Error() string {
	return fmt.Sprintf("source image %s is not a valid image (expected .png, .jpg or .jpeg)", e.Path)
}

// SourceImageMissingError is returned when the source image, or its resized
// copy, cannot be found.
type SourceImageMissingError struct {
	Path string
	Err  error
}

func (e *SourceImageMissingError) Error() string {
	return fmt.Sprintf("source image %s not found: %v", e.Path, e.Err)
}

func (e *SourceImageMissingError) Unwrap() error { return e.Err }
