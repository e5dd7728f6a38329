// Package geo holds the fixed US region and state-center tables used to decide
// whether a facility coordinate is plausible.
package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Coordinate is a latitude/longitude pair in degrees. No range is enforced.
type Coordinate struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// BoundingBox is an axis-aligned latitude/longitude box with inclusive bounds.
type BoundingBox struct {
	LatMin float64 `yaml:"lat_min"`
	LatMax float64 `yaml:"lat_max"`
	LonMin float64 `yaml:"lon_min"`
	LonMax float64 `yaml:"lon_max"`
}

// Region is a named US state group or territory and its bounding box.
type Region struct {
	Name string      `yaml:"name"`
	Box  BoundingBox `yaml:"box"`

	bounds *geom.Bounds
}

// Contains reports whether the point lies inside the region box, edges included.
func (r Region) Contains(lat, lon float64) bool {
	return r.bounds.OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}

func newRegion(name string, latMin, latMax, lonMin, lonMax float64) Region {
	return Region{
		Name: name,
		Box:  BoundingBox{LatMin: latMin, LatMax: latMax, LonMin: lonMin, LonMax: lonMax},
		// X is longitude, Y is latitude.
		bounds: geom.NewBounds(geom.XY).Set(lonMin, latMin, lonMax, latMax),
	}
}

var regions = []Region{
	newRegion("Continental US", 24.5, 49.5, -125.0, -66.5),
	newRegion("Alaska", 51.2, 71.5, -180.0, -130.0),
	newRegion("Hawaii", 18.5, 22.5, -160.5, -154.5),
	newRegion("Puerto Rico", 17.5, 18.6, -67.5, -65.0),
	newRegion("Guam", 13.2, 13.7, 144.6, 145.0),
	newRegion("US Virgin Islands", 17.6, 18.5, -65.2, -64.5),
	newRegion("American Samoa", -14.5, -14.1, -171.0, -168.0),
	newRegion("Northern Mariana Islands", 14.0, 20.6, 144.5, 146.5),
}

// Regions returns a copy of the region table in catalog order.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// inRange reports whether lat/lon are valid WGS84 degrees. NaN is never in range.
func inRange(lat, lon float64) bool {
	return math.Abs(lat) <= 90 && math.Abs(lon) <= 180
}

// RegionOf returns the first region containing the point.
func RegionOf(lat, lon float64) (Region, bool) {
	if !inRange(lat, lon) {
		return Region{}, false
	}
	for _, r := range regions {
		if r.Contains(lat, lon) {
			return r, true
		}
	}
	return Region{}, false
}

// IsWithinAnyRegion reports whether the coordinate is in WGS84 range and inside
// at least one region box.
func IsWithinAnyRegion(lat, lon float64) bool {
	_, ok := RegionOf(lat, lon)
	return ok
}

// IsSuspicious reports whether a coordinate falls outside every region,
// including anything outside the valid latitude/longitude range.
func IsSuspicious(lat, lon float64) bool {
	return !IsWithinAnyRegion(lat, lon)
}
