// Package geofix proposes corrections for facility coordinates that fall
// outside every US region, ranked by a heuristic confidence label.
package geofix

import (
	"github.com/sells-group/rmp-cli/internal/geo"
)

// Kind names the heuristic that produced a candidate.
type Kind int

// Candidate kinds, in generation order.
const (
	SwappedAxes Kind = iota + 1
	SignError
	DecimalShift
	StateCentroid
)

func (k Kind) String() string {
	switch k {
	case SwappedAxes:
		return "SwappedAxes"
	case SignError:
		return "SignError"
	case DecimalShift:
		return "DecimalShift"
	case StateCentroid:
		return "StateCentroid"
	default:
		return "None"
	}
}

// Confidence is an ordinal quality label, not a probability.
type Confidence int

// Confidence levels. Higher values rank first.
const (
	Low    Confidence = 1
	Medium Confidence = 2
	High   Confidence = 3
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	default:
		return "None"
	}
}

// Candidate is one hypothesized fix for a suspicious coordinate.
type Candidate struct {
	Kind       Kind
	Coords     geo.Coordinate
	Confidence Confidence
}
