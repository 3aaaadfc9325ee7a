package normalize

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Casers and chains carry state, so each call takes its own from the pool.
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFKC, cases.Lower(language.Und))
	},
}

var parenGroupPattern = regexp.MustCompile(`\(([^()]*)\)`)

// Normalize returns the canonical comparison form of title.
func Normalize(title string) string {
	if title == "" {
		return ""
	}
	s := fold(title)
	s = substitute(s)

	tokens := strings.Fields(s)
	tokens = romanToArabic(tokens)
	tokens = ordinalsToNumbers(tokens)
	tokens = collapseSeasonMarkers(tokens)

	s = stripReleaseTags(strings.Join(tokens, " "))
	s = strings.Join(dropStopWords(strings.Fields(s)), " ")

	s = erasePunctuation(s)
	return strings.Join(strings.Fields(s), " ")
}

func fold(s string) string {
	s = strings.ToValidUTF8(s, "")
	tr := foldPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	foldPool.Put(tr)
	if err != nil {
		return strings.ToLower(norm.NFKC.String(s))
	}
	return out
}

func substitute(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		if r == '0' && i > 0 && i < len(runes)-1 && unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1]) {
			b.WriteRune('o')
			continue
		}
		if repl, ok := runeSubstitutions[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func romanToArabic(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, token := range tokens {
		core := strings.TrimRightFunc(token, isASCIIPunct)
		if value, ok := romanLookup[strings.ToLower(core)]; ok {
			out[i] = value + token[len(core):]
			continue
		}
		out[i] = token
	}
	return out
}

func ordinalsToNumbers(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, token := range tokens {
		out[i] = token
		lower := strings.ToLower(token)
		for _, suffix := range ordinalSuffixes {
			if !strings.HasSuffix(lower, suffix) {
				continue
			}
			if digits := lower[:len(lower)-len(suffix)]; isASCIIDigits(digits) {
				out[i] = digits
			}
			break
		}
	}
	return out
}

func collapseSeasonMarkers(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if _, ok := seasonKeywords[token]; ok {
			if i+1 < len(tokens) && isASCIIDigits(tokens[i+1]) {
				out = append(out, tokens[i+1])
				i++
				continue
			}
			out = append(out, token)
			continue
		}
		if digits, ok := gluedSeasonNumber(token); ok {
			out = append(out, digits)
			continue
		}
		out = append(out, token)
	}
	return out
}

// gluedSeasonNumber handles "season2", "cour3" and "s2".
func gluedSeasonNumber(token string) (string, bool) {
	for keyword := range seasonKeywords {
		if rest, ok := strings.CutPrefix(token, keyword); ok && isASCIIDigits(rest) {
			return rest, true
		}
	}
	if rest, ok := strings.CutPrefix(token, "s"); ok && isASCIIDigits(rest) {
		return rest, true
	}
	return "", false
}

func stripReleaseTags(s string) string {
	return parenGroupPattern.ReplaceAllStringFunc(s, func(group string) string {
		inner := strings.ToLower(strings.TrimSpace(group[1 : len(group)-1]))
		if _, ok := releaseTags[inner]; ok {
			return " "
		}
		if isASCIIDigits(inner) {
			return " "
		}
		return group
	})
}

func dropStopWords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := stopWords[token]; ok {
			continue
		}
		if repl, ok := tokenRemaps[token]; ok {
			token = repl
		}
		out = append(out, token)
	}
	return out
}

func erasePunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func isASCIIPunct(r rune) bool {
	return strings.ContainsRune(asciiPunctuation, r)
}
