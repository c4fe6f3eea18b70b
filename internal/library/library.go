// Package library holds the tile library of the mosaic compositor: the
// ordered list of tiles with their average colors and thumbnail files, and a
// lazily filled cache of decoded thumbnail bitmaps.
//
// # Cache
//
// Every entry owns one cache slot. A slot is filled the first time its tile
// is requested through Tile and is never evicted; the bitmap lives as long
// as the Library. Filling is guarded by a sync.Once per slot, so each
// thumbnail is decoded at most once even when several goroutines ask for the
// same tile. Apart from the slots a Library is read-only after construction.
package library

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/ironsheep/image-mosaic/internal/imaging"
	"github.com/ironsheep/image-mosaic/internal/match"
)

// Entry describes one tile.
type Entry struct {
	// Color is the average color of the original tile image.
	Color imaging.Color `json:"color"`

	// Path is the thumbnail file. It is also the cache key of the tile.
	Path string `json:"path"`
}

// Decoder turns a thumbnail file into a bitmap ready to be pasted.
type Decoder interface {
	Decode(path string) (*image.RGBA, error)
}

// DecoderFunc adapts a plain function to the Decoder interface.
type DecoderFunc func(path string) (*image.RGBA, error)

// Decode calls f(path).
func (f DecoderFunc) Decode(path string) (*image.RGBA, error) {
	return f(path)
}

// DefaultDecoder reads thumbnails from disk with imaging.LoadRGBA.
var DefaultDecoder Decoder = DecoderFunc(imaging.LoadRGBA)

type slot struct {
	once   sync.Once
	filled atomic.Bool
	img    *image.RGBA
	err    error
}

// Library is an ordered collection of tiles plus their bitmap cache.
type Library struct {
	entries []Entry
	colors  []imaging.Color
	slots   []slot
	decoder Decoder
	decoded atomic.Int64
}

// Option configures a Library.
type Option func(*Library)

// WithDecoder replaces DefaultDecoder.
func WithDecoder(d Decoder) Option {
	return func(l *Library) {
		l.decoder = d
	}
}

// New creates a library over entries, in the given order. The entries slice
// is copied.
func New(entries []Entry, opts ...Option) *Library {
	l := &Library{
		entries: make([]Entry, len(entries)),
		colors:  make([]imaging.Color, len(entries)),
		slots:   make([]slot, len(entries)),
		decoder: DefaultDecoder,
	}
	copy(l.entries, entries)
	for i, e := range entries {
		l.colors[i] = e.Color
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Len returns the number of tiles.
func (l *Library) Len() int {
	return len(l.entries)
}

// Entry returns the tile at index i.
func (l *Library) Entry(i int) Entry {
	return l.entries[i]
}

// Entries returns a copy of all tiles in library order.
func (l *Library) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Colors returns the average colors of all tiles in library order. The
// returned slice must not be modified.
func (l *Library) Colors() []imaging.Color {
	return l.colors
}

// Match returns the index of the tile whose color is nearest to q.
func (l *Library) Match(q imaging.Color) (int, error) {
	i := match.NearestIndex(l.colors, q)
	if i == match.NoMatch {
		return match.NoMatch, ErrEmptyLibrary
	}
	return i, nil
}

// Tile returns the decoded bitmap of tile i, decoding and caching it on the
// first call. The returned image is shared and must be treated as read-only.
func (l *Library) Tile(i int) (*image.RGBA, error) {
	if i < 0 || i >= len(l.slots) {
		return nil, fmt.Errorf("tile index %d out of range [0,%d)", i, len(l.slots))
	}
	s := &l.slots[i]
	s.once.Do(func() {
		path := l.entries[i].Path
		img, err := l.decoder.Decode(path)
		if err != nil {
			s.err = &TileDecodeError{Path: path, Err: err}
			return
		}
		s.img = img
		s.filled.Store(true)
		l.decoded.Add(1)
	})
	return s.img, s.err
}

// Cached reports whether the bitmap of tile i has been decoded.
func (l *Library) Cached(i int) bool {
	return l.slots[i].filled.Load()
}

// DecodedCount returns how many distinct tiles have been decoded so far.
func (l *Library) DecodedCount() int {
	return int(l.decoded.Load())
}
