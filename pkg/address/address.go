// Package address splits free-text postal addresses into street, zip and
// city parts using per-country format rules.
package address

import (
	"regexp"
	"strings"
)

// extractFunc is one country's parsing strategy. It receives the non-empty
// address lines and the country zip pattern, and reports ok=false when the
// text does not match the expected layout.
type extractFunc func(lines []string, zipPattern string) (address, zip, city string, ok bool)

// formats maps a country code to its parsing strategy. Adding a country is
// a matter of registering its strategy here plus its zip pattern in zip.go.
var formats = map[string]extractFunc{
	"GB": cityThenZipLines,
	"MT": zipThenCityLines,
	"AT": trailingZipSpaceCity,
	"CY": trailingZipSpaceCity,
	"PL": trailingZipSpaceCity,
	"BE": trailingZipSpaceCity,
	"FI": trailingZipSpaceCity,
	"FR": trailingZipSpaceCity,
	"LU": trailingZipSpaceCity,
	"PT": trailingZipSpaceCity,
	"IT": trailingZipSpaceCity,
	"SK": countryLineThenZipCity,
	"SE": trailingZipCityRegexp,
	"CZ": trailingZipCityRegexp,
	"DK": trailingZipCityRegexp,
	"NL": trailingZipCityRegexp,
	"EE": trailingStreetZipCity,
	"HU": leadingZipCityStreet,
	"BG": trailingCityZip,
	"GR": trailingZipDashCity,
	"LV": singleLineStreetCityZip,
	"SI": singleLineStreetZipCity,
	"HR": singleLineStreetZipCity,
}

// Extract splits a multi-line postal address into (street and number, zip,
// city) for the given country. When the country has no known format, or the
// text does not match it, or the extracted zip fails validation, the whole
// input collapses into the address part and zip/city stay empty. Parsing
// never fails hard: a lookup must not abort because an upstream formatted an
// address creatively.
func Extract(country string, text string) (address, zip, city string) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	zipPattern := ZipRegex(country)
	f := formats[country]
	if zipPattern == "" || f == nil || len(lines) == 0 {
		return collapse(text), "", ""
	}

	address, zip, city, ok := f(lines, zipPattern)
	if !ok || zip == "" || CheckZip(zip, country) != nil {
		return collapse(text), "", ""
	}
	return address, zip, city
}

func collapse(text string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\n", " ").Replace(text))
}

// Great Britain: city on the second-to-last line, zip on the last.
func cityThenZipLines(lines []string, _ string) (string, string, string, bool) {
	if len(lines) < 2 {
		return "", "", "", false
	}
	zip := lines[len(lines)-1]
	city := lines[len(lines)-2]
	return strings.Join(lines[:len(lines)-2], " "), zip, city, true
}

// Malta: zip on the second-to-last line, city on the last.
func zipThenCityLines(lines []string, _ string) (string, string, string, bool) {
	if len(lines) < 2 {
		return "", "", "", false
	}
	city := lines[len(lines)-1]
	zip := lines[len(lines)-2]
	return strings.Join(lines[:len(lines)-2], " "), zip, city, true
}

// The common continental layout: the last line is "ZIP CITY".
func trailingZipSpaceCity(lines []string, _ string) (string, string, string, bool) {
	last := lines[len(lines)-1]
	parts := strings.SplitN(last, " ", 2)
	if len(parts) != 2 {
		return "", "", "", false
	}
	return strings.Join(lines[:len(lines)-1], " "), parts[0], parts[1], true
}

// Slovakia: the last line names the country, then "ZIP CITY" follows above.
// The zip itself may contain a space ("811 01"), so the split runs on the
// zip pattern.
func countryLineThenZipCity(lines []string, zipPattern string) (string, string, string, bool) {
	if len(lines) < 2 {
		return "", "", "", false
	}
	return trailingZipCityRegexp(lines[:len(lines)-1], zipPattern)
}

// Sweden, Czechia, Denmark, Netherlands: last line is "ZIP CITY" with a
// multi-token zip, so the split runs on the zip pattern instead of a space.
func trailingZipCityRegexp(lines []string, zipPattern string) (string, string, string, bool) {
	last := lines[len(lines)-1]
	re, err := regexp.Compile(`^(?P<zip>` + zipPattern + `)\s(?P<city>.*)$`)
	if err != nil {
		return "", "", "", false
	}
	m := re.FindStringSubmatch(last)
	if m == nil {
		return "", "", "", false
	}
	return strings.Join(lines[:len(lines)-1], " "), m[re.SubexpIndex("zip")], m[re.SubexpIndex("city")], true
}

// Estonia: "STREET ZIP CITY" on the last line. Upstream data sometimes
// repeats the city ("TALLINN TALLINN"), which is collapsed.
func trailingStreetZipCity(lines []string, zipPattern string) (string, string, string, bool) {
	last := lines[len(lines)-1]
	re, err := regexp.Compile(`^(?P<addr>.*)\s+(?P<zip>` + zipPattern + `)\s(?P<city>.*?)$`)
	if err != nil {
		return "", "", "", false
	}
	m := re.FindStringSubmatch(last)
	if m == nil {
		return "", "", "", false
	}
	city := m[re.SubexpIndex("city")]
	if n := len(city); n%2 == 1 {
		if half := city[:n/2]; city == half+" "+half {
			city = half
		}
	}
	rest := append(append([]string{}, lines[:len(lines)-1]...), m[re.SubexpIndex("addr")])
	return strings.Join(rest, " "), m[re.SubexpIndex("zip")], city, true
}

// Hungary: "ZIP CITY STREET" on the last line.
func leadingZipCityStreet(lines []string, zipPattern string) (string, string, string, bool) {
	last := lines[len(lines)-1]
	re, err := regexp.Compile(`^(?P<zip>` + zipPattern + `)\s(?P<city>.*?)\s(?P<addr>.*)$`)
	if err != nil {
		return "", "", "", false
	}
	m := re.FindStringSubmatch(last)
	if m == nil {
		return "", "", "", false
	}
	rest := append(append([]string{}, lines[:len(lines)-1]...), m[re.SubexpIndex("addr")])
	return strings.Join(rest, " "), m[re.SubexpIndex("zip")], m[re.SubexpIndex("city")], true
}

// Bulgaria: "[STREET, ]CITY ZIP" on the last line.
func trailingCityZip(lines []string, zipPattern string) (string, string, string, bool) {
	last := lines[len(lines)-1]
	re, err := regexp.Compile(`^(?P<addr>.*,\s)?(?P<city>.*?)\s(?P<zip>` + zipPattern + `)$`)
	if err != nil {
		return "", "", "", false
	}
	m := re.FindStringSubmatch(last)
	if m == nil {
		return "", "", "", false
	}
	rest := lines[:len(lines)-1]
	if addr := strings.TrimSuffix(strings.TrimSpace(m[re.SubexpIndex("addr")]), ","); addr != "" {
		rest = append(append([]string{}, rest...), addr)
	}
	return strings.Join(rest, " "), m[re.SubexpIndex("zip")], m[re.SubexpIndex("city")], true
}

// Greece: "STREET ZIP - CITY" on the last line.
func trailingZipDashCity(lines []string, zipPattern string) (string, string, string, bool) {
	last := lines[len(lines)-1]
	re, err := regexp.Compile(`^(?P<addr>.*)\s(?P<zip>` + zipPattern + `) - (?P<city>.*?)$`)
	if err != nil {
		return "", "", "", false
	}
	m := re.FindStringSubmatch(last)
	if m == nil {
		return "", "", "", false
	}
	rest := append(append([]string{}, lines[:len(lines)-1]...), m[re.SubexpIndex("addr")])
	return strings.Join(rest, " "), m[re.SubexpIndex("zip")], m[re.SubexpIndex("city")], true
}

// Latvia: everything on one line as "STREET, CITY, ZIP".
func singleLineStreetCityZip(lines []string, zipPattern string) (string, string, string, bool) {
	re, err := regexp.Compile(`^(?P<addr>.*),\s(?P<city>.*?),\s(?P<zip>` + zipPattern + `)$`)
	if err != nil {
		return "", "", "", false
	}
	m := re.FindStringSubmatch(lines[0])
	if m == nil {
		return "", "", "", false
	}
	return m[re.SubexpIndex("addr")], m[re.SubexpIndex("zip")], m[re.SubexpIndex("city")], true
}

// Slovenia, Croatia: "STREET, ZIP CITY" on one line.
func singleLineStreetZipCity(lines []string, zipPattern string) (string, string, string, bool) {
	re, err := regexp.Compile(`^(?P<addr>.*),\s(?P<zip>` + zipPattern + `)\s(?P<city>.*?)$`)
	if err != nil {
		return "", "", "", false
	}
	m := re.FindStringSubmatch(lines[0])
	if m == nil {
		return "", "", "", false
	}
	return m[re.SubexpIndex("addr")], m[re.SubexpIndex("zip")], m[re.SubexpIndex("city")], true
}
