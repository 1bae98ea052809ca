package identifier

import (
	"regexp"
	"strings"
)

// Region pairs a jurisdiction name with its canonical code.
type Region struct {
	Name string
	Code string
}

// Regions is the jurisdiction table checked in order. Exposed so callers
// can extend it for additional jurisdictions.
var Regions = []Region{
	{"new south wales", "NSW"},
	{"victoria", "VIC"},
	{"queensland", "QLD"},
	{"western australia", "WA"},
	{"south australia", "SA"},
	{"tasmania", "TAS"},
	{"australian capital territory", "ACT"},
	{"northern territory", "NT"},
}

var (
	regionCodeParenPattern = regexp.MustCompile(`\((NSW|VIC|QLD|WA|SA|TAS|ACT|NT)\)`)
	regionCodePattern      = regexp.MustCompile(`\b(NSW|VIC|QLD|WA|SA|TAS|ACT|NT)\b`)
)

// DetectRegion returns the jurisdiction code mentioned in the text, or ""
// when none is found. Full names are checked before bare codes since codes
// like "SA" and "WA" collide with ordinary words less often that way. Codes
// are matched case-sensitively against the original text, so statute words
// like "Act" never read as the ACT jurisdiction, and a parenthesized code
// ("Road Transport Act (NSW)") wins over a bare one.
func DetectRegion(text string) string {
	lower := strings.ToLower(text)
	for _, region := range Regions {
		if strings.Contains(lower, region.Name) {
			return region.Code
		}
	}
	if m := regionCodeParenPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return regionCodePattern.FindString(text)
}
