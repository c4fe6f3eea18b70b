// Package match finds the library color closest to a query color.
//
// Distance is plain Euclidean distance in RGB space. The search is a linear
// scan in library order and the first entry reaching the minimum wins, so the
// result for a given color list is fully reproducible.
package match

import (
	"math"

	"github.com/ironsheep/image-mosaic/internal/imaging"
)

// NoMatch is returned by NearestIndex for an empty color list.
const NoMatch = -1

// sentinel is larger than any reachable squared distance (3 * 255² = 195075).
const sentinel = 1000 * 1000

// Distance returns the Euclidean distance between a and b:
//
//	sqrt((Δr)² + (Δg)² + (Δb)²)
func Distance(a, b imaging.Color) float64 {
	return math.Sqrt(float64(squaredDistance(a, b)))
}

func squaredDistance(a, b imaging.Color) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// NearestIndex returns the index of the color in colors closest to q, or
// NoMatch if colors is empty.
//
// Candidates are compared with strict less-than, so among equidistant colors
// the lowest index is returned. Squared integer distances are compared
// instead of square roots; the ordering is the same and no precision is lost.
func NearestIndex(colors []imaging.Color, q imaging.Color) int {
	best, bestDist := NoMatch, sentinel
	for i, c := range colors {
		if d := squaredDistance(c, q); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
