package geofix

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/rmp-cli/internal/geo"
)

// Column names the corrector reads from a record.
const (
	LatitudeField  = "Latitude"
	LongitudeField = "Longitude"
	StateField     = "State"
)

// ErrMissingField is attached to a Result when a record lacks a column the
// corrector needs.
var ErrMissingField = eris.New("geofix: missing field")

// Fields is the read side of a tabular record.
type Fields interface {
	Get(column string) (string, bool)
}

// Result is the outcome of assessing one record's coordinates.
//
// Candidates is empty when the coordinates could not be parsed, were already
// plausible, or no heuristic applied. Err is set when the record could not be
// assessed at all; the raw values are still preserved.
type Result struct {
	RawLat     string
	RawLon     string
	Original   geo.Coordinate
	Parsed     bool
	Suspicious bool
	Candidates []Candidate
	Err        error
}

// Best returns the highest-ranked candidate.
func (r Result) Best() (Candidate, bool) {
	if len(r.Candidates) == 0 {
		return Candidate{}, false
	}
	return r.Candidates[0], true
}

// Correct assesses a raw latitude/longitude pair and, when it falls outside
// every region, proposes ranked corrections. state is the two-letter code
// used for the centroid fallback.
func Correct(rawLat, rawLon, state string) Result {
	res := Result{RawLat: rawLat, RawLon: rawLon}

	c, ok := ParseCoordinate(rawLat, rawLon)
	if !ok {
		return res
	}
	res.Original = c
	res.Parsed = true

	if !geo.IsSuspicious(c.Lat, c.Lon) {
		return res
	}
	res.Suspicious = true
	res.Candidates = Candidates(c, state)
	return res
}

// CorrectFields runs Correct on the Latitude, Longitude and State columns of
// a record. A missing column never aborts the caller: the Result carries
// ErrMissingField and no candidates.
func CorrectFields(f Fields) Result {
	rawLat, latOK := f.Get(LatitudeField)
	rawLon, lonOK := f.Get(LongitudeField)
	state, stateOK := f.Get(StateField)

	var missing []string
	if !latOK {
		missing = append(missing, LatitudeField)
	}
	if !lonOK {
		missing = append(missing, LongitudeField)
	}
	if !stateOK {
		missing = append(missing, StateField)
	}
	if len(missing) > 0 {
		return Result{
			RawLat: rawLat,
			RawLon: rawLon,
			Err:    eris.Wrapf(ErrMissingField, "columns %s", strings.Join(missing, ", ")),
		}
	}

	return Correct(rawLat, rawLon, state)
}

// ParseCoordinate parses latitude and longitude strings as floats. Surrounding
// whitespace is ignored.
func ParseCoordinate(rawLat, rawLon string) (geo.Coordinate, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(rawLat), 64)
	if err != nil {
		return geo.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(rawLon), 64)
	if err != nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: lat, Lon: lon}, true
}

// Candidates generates every in-region correction for c, ranked by
// confidence. Within a confidence level candidates keep generation order:
// axis swap, sign flips, decimal shifts, then the state centroid.
func Candidates(c geo.Coordinate, state string) []Candidate {
	var out []Candidate
	try := func(kind Kind, lat, lon float64, conf Confidence) {
		if geo.IsWithinAnyRegion(lat, lon) {
			out = append(out, Candidate{Kind: kind, Coords: geo.Coordinate{Lat: lat, Lon: lon}, Confidence: conf})
		}
	}

	lat, lon := c.Lat, c.Lon

	try(SwappedAxes, lon, lat, Medium)

	for _, p := range [][2]float64{
		{-lat, lon},
		{lat, -lon},
		{-lat, -lon},
	} {
		try(SignError, p[0], p[1], signConfidence(p[0], p[1]))
	}

	for _, p := range [][2]float64{
		{lat / 10, lon},
		{lat, lon / 10},
		{lat / 10, lon / 10},
		{lat * 10, lon},
		{lat, lon * 10},
		{lat * 10, lon * 10},
	} {
		try(DecimalShift, p[0], p[1], Medium)
	}

	if center, ok := geo.StateCenter(state); ok {
		out = append(out, Candidate{Kind: StateCentroid, Coords: center, Confidence: Low})
	}

	rank(out)
	return out
}

// signConfidence is High only when both negated components are nonzero; a
// zero axis says little about a genuine sign flip.
func signConfidence(lat, lon float64) Confidence {
	if lat != 0 && lon != 0 {
		return High
	}
	return Medium
}

func rank(cs []Candidate) {
	slices.SortStableFunc(cs, func(a, b Candidate) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
}
