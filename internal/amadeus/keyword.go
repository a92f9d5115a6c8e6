package amadeus

import "strings"

// maxKeywordLen is the longest keyword the upstream city search matches on.
const maxKeywordLen = 10

// cityKeywordAliases corrects city names the upstream search knows under a
// different spelling. Keys are the upper-cased truncated keyword.
var cityKeywordAliases = map[string]string{
	"MARRAKECH": "MARRAKESH",
	"MALTA":     "VALLETTA",
	"MALE":      "MALÉ",
}

// areaNameMismatches lists fragments of safety-area names that belong to a
// city despite not containing its name, e.g. areas named after a sub-district
// but reported under the city.
var areaNameMismatches = []string{
	"MARRAKESH",
	"MALÉ",
	"VALLETTA",
	"MINNEAPOLIS",
	"CASTRIES",
	"MANAMA",
	"KOLN",
	"LEIPZIG",
	"TEL AVIV",
	"KLAIPEDA",
}

// CityKeyword converts a free-text city name into a keyword the upstream
// city search can match. Slashes count as word separators. The result is the
// longest space-separated prefix not exceeding the keyword length limit; a
// first word longer than the limit is kept whole rather than cut mid-word.
// Known alias corrections are applied to the truncated name.
func CityKeyword(fullName string) string {
	words := strings.Fields(strings.ReplaceAll(fullName, "/", " "))
	if len(words) == 0 {
		return ""
	}
	keyword := words[0]
	for _, word := range words[1:] {
		if len(keyword)+1+len(word) > maxKeywordLen {
			break
		}
		keyword += " " + word
	}
	if alias, ok := cityKeywordAliases[strings.ToUpper(keyword)]; ok {
		return alias
	}
	return keyword
}

// MatchAreaName reports whether a safety-rated area belongs to the given
// city: either the city name appears in the area name (case-insensitive) or
// the area name contains a known mismatched sub-district name.
func MatchAreaName(cityName, areaName string) bool {
	area := strings.ToUpper(areaName)
	if strings.Contains(area, strings.ToUpper(cityName)) {
		return true
	}
	for _, name := range areaNameMismatches {
		if strings.Contains(area, name) {
			return true
		}
	}
	return false
}
