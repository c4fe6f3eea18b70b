// Package imaging provides the pixel-level building blocks of the mosaic
// compositor: color averaging, thumbnail resampling, and image file I/O.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Color Representation
//
// Color is a plain 8-bit RGB triple with no alpha. Pixels are read through the
// non-premultiplied NRGBA model, so a partially transparent pixel contributes
// its stored RGB values rather than values darkened by its alpha.
//
//   - Key: "{r}_{g}_{b}", the thumbnail file name stem
//   - Hex: "#rrggbb"
//
// # Integer Policy
//
// Averages are floored and thumbnail dimensions are truncated. Both feed the
// nearest-color matching, so they must stay exact across runs and platforms.
//
// # Resampling
//
// Thumbnails are resampled through the Resampler interface. The default is the
// Lanczos filter of github.com/disintegration/imaging; alternatives backed by
// bild, nfnt/resize and golang.org/x/image/draw are available by name.
//
// # Thread Safety
//
// Every function in this package is stateless and safe to call concurrently
// on different images.
package imaging
