package geo

import "sort"

// stateCenters maps USPS state and territory codes to a representative point.
var stateCenters = map[string]Coordinate{
	"AL": {32.8, -86.8},
	"AK": {64.2, -149.5},
	"AZ": {34.3, -111.7},
	"AR": {34.8, -92.2},
	"CA": {36.8, -119.4},
	"CO": {39.1, -105.4},
	"CT": {41.6, -72.7},
	"DE": {39.0, -75.5},
	"FL": {27.8, -81.5},
	"GA": {32.9, -83.4},
	"HI": {20.3, -156.4},
	"ID": {44.2, -114.5},
	"IL": {40.0, -89.0},
	"IN": {39.9, -86.3},
	"IA": {42.0, -93.5},
	"KS": {38.5, -98.0},
	"KY": {37.5, -85.3},
	"LA": {31.0, -92.0},
	"ME": {45.4, -69.0},
	"MD": {39.0, -76.7},
	"MA": {42.2, -71.5},
	"MI": {44.3, -85.4},
	"MN": {46.3, -94.3},
	"MS": {32.7, -89.7},
	"MO": {38.4, -92.3},
	"MT": {47.0, -109.6},
	"NE": {41.5, -99.8},
	"NV": {39.3, -116.6},
	"NH": {43.7, -71.6},
	"NJ": {40.1, -74.7},
	"NM": {34.4, -106.1},
	"NY": {42.9, -75.5},
	"NC": {35.6, -79.4},
	"ND": {47.5, -100.5},
	"OH": {40.4, -82.7},
	"OK": {35.6, -97.4},
	"OR": {43.9, -120.6},
	"PA": {40.9, -77.8},
	"RI": {41.7, -71.6},
	"SC": {33.9, -80.9},
	"SD": {44.4, -100.2},
	"TN": {35.9, -86.4},
	"TX": {31.5, -99.3},
	"UT": {39.3, -111.7},
	"VT": {44.0, -72.7},
	"VA": {37.8, -78.8},
	"WA": {47.4, -120.5},
	"WV": {38.6, -80.6},
	"WI": {44.3, -89.5},
	"WY": {42.8, -107.3},
	"DC": {38.9, -77.0},
	// Territories
	"PR": {18.2, -66.4},
	"GU": {13.5, 144.8},
	"VI": {18.3, -64.8},
	"AS": {-14.3, -170.0},
	"MP": {15.2, 145.8},
}

// StateCenter returns the representative point for a two-letter state or
// territory code. Codes are matched exactly; "ak" is not "AK".
func StateCenter(code string) (Coordinate, bool) {
	c, ok := stateCenters[code]
	return c, ok
}

// StateCodes returns all known codes, sorted.
func StateCodes() []string {
	codes := make([]string, 0, len(stateCenters))
	for code := range stateCenters {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
