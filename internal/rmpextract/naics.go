package rmpextract

import (
	"strings"
	"unicode"
)

// naicsSectors maps every valid 2-digit NAICS sector to its title.
var naicsSectors = map[string]string{
	"11": "Agriculture, Forestry, Fishing and Hunting",
	"21": "Mining, Quarrying, and Oil and Gas Extraction",
	"22": "Utilities",
	"23": "Construction",
	"31": "Manufacturing",
	"32": "Manufacturing",
	"33": "Manufacturing",
	"42": "Wholesale Trade",
	"44": "Retail Trade",
	"45": "Retail Trade",
	"48": "Transportation and Warehousing",
	"49": "Transportation and Warehousing",
	"51": "Information",
	"52": "Finance and Insurance",
	"53": "Real Estate and Rental and Leasing",
	"54": "Professional, Scientific, and Technical Services",
	"55": "Management of Companies and Enterprises",
	"56": "Administrative and Support and Waste Management",
	"61": "Educational Services",
	"62": "Health Care and Social Assistance",
	"71": "Arts, Entertainment, and Recreation",
	"72": "Accommodation and Food Services",
	"81": "Other Services (except Public Administration)",
	"92": "Public Administration",
}

// NormalizeNAICS trims whitespace and trailing dashes ("5221--" becomes
// "5221"). A lone "-" normalizes to "".
func NormalizeNAICS(code string) string {
	code = strings.TrimSpace(code)
	return strings.TrimRight(code, "-")
}

// NAICSSector returns the 2-digit sector of code, or "" when code is too short.
func NAICSSector(code string) string {
	code = strings.TrimSpace(code)
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}

// IsValidNAICS reports whether code is 2 to 6 digits in a known sector.
func IsValidNAICS(code string) bool {
	if len(code) < 2 || len(code) > 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	_, ok := naicsSectors[code[:2]]
	return ok
}

// SectorTitle returns the title of a 2-digit sector.
func SectorTitle(sector string) (string, bool) {
	title, ok := naicsSectors[sector]
	return title, ok
}
