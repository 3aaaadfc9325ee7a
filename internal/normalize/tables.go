package normalize

// Roman numerals are only converted on a whole-token match, so "hawaii" is
// never read as containing "ii". Longest forms first.
var romanNumerals = []struct {
	numeral string
	value   string
}{
	{"xiii", "13"},
	{"xii", "12"},
	{"xi", "11"},
	{"viii", "8"},
	{"vii", "7"},
	{"vi", "6"},
	{"iv", "4"},
	{"ix", "9"},
	{"x", "10"},
	{"v", "5"},
	{"iii", "3"},
	{"ii", "2"},
}

var romanLookup = func() map[string]string {
	m := make(map[string]string, len(romanNumerals))
	for _, entry := range romanNumerals {
		m[entry.numeral] = entry.value
	}
	return m
}()

var ordinalSuffixes = []string{"st", "nd", "rd", "th"}

var seasonKeywords = map[string]struct{}{
	"season": {},
	"cour":   {},
	"series": {},
}

// releaseTags are parenthesized groups dropped outright, e.g. "(TV)".
var releaseTags = map[string]struct{}{
	"tv":       {},
	"ova":      {},
	"ona":      {},
	"oad":      {},
	"oav":      {},
	"special":  {},
	"specials": {},
}

var stopWords = map[string]struct{}{
	"the":     {},
	"a":       {},
	"an":      {},
	"episode": {},
	"ep":      {},
	"ep.":     {},
	"tv":      {},
	"ova":     {},
	"ona":     {},
	"season":  {},
	"cour":    {},
	"part":    {},
}

var tokenRemaps = map[string]string{
	"&":   "and",
	"oad": "ova",
	"oav": "ova",
}

var runeSubstitutions = map[rune]string{
	'@':      "a",
	'\u00d7': "x", // multiplication sign
	'\u2715': "x",
	'\u2716': "x",
	'\u2018': "'",
	'\u2019': "'",
	'\u201a': "'",
	'\u201b': "'",
	'\u201c': `"`,
	'\u201d': `"`,
	'\u201e': `"`,
	'\u201f': `"`,
	'\u2013': "-", // en dash
	'\u2014': "-", // em dash
	'\u2026': "...",
	'\u00e6': "ae",
	'\u0153': "oe",
	'\u00f0': "d",
	'\u00fe': "th",
	'\u00df': "ss",
}
