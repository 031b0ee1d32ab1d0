package tempfile

import (
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds the transliterated part of a slug.
const MaxSlugLength = 100

// transliterations maps lower-case runes to ASCII. Input is decomposed and
// stripped of combining marks first, and lookups go through unicode.ToLower,
// so accented and upper-case forms resolve to these entries.
var transliterations = map[rune]string{
	'α': "a", 'β': "b", 'γ': "g", 'δ': "d", 'ε': "e", 'ζ': "z",
	'η': "eh", 'θ': "h", 'ι': "i", 'κ': "k", 'λ': "l", 'μ': "m",
	'ν': "n", 'ξ': "x", 'ο': "o", 'π': "p", 'ρ': "r", 'σ': "s",
	'ς': "s", 'τ': "t", 'υ': "u", 'φ': "f", 'ϕ': "f", 'ψ': "ps",
	'ω': "oh",
}

// SlugCache memoizes title slugs. Each distinct title receives the next value
// of a monotonically increasing counter as its prefix. Safe for concurrent use.
type SlugCache struct {
	mu      sync.Mutex
	counter int
	slugs   map[string]string
}

// NewSlugCache returns an empty cache.
func NewSlugCache() *SlugCache {
	return &SlugCache{slugs: make(map[string]string)}
}

// Encode returns the filesystem-safe slug for title, computing it on first use.
func (c *SlugCache) Encode(title string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slug, ok := c.slugs[title]; ok {
		return slug
	}
	c.counter++
	slug := "c" + strconv.Itoa(c.counter) + "_" + cutTail(transliterate(title), MaxSlugLength)
	c.slugs[title] = slug
	return slug
}

// Len reports how many titles have been encoded.
func (c *SlugCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slugs)
}

func transliterate(title string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		stripped = title
	}

	var mapped strings.Builder
	mapped.Grow(len(stripped))
	for _, r := range stripped {
		if ascii, ok := transliterations[unicode.ToLower(r)]; ok {
			mapped.WriteString(ascii)
			continue
		}
		mapped.WriteRune(r)
	}

	var out strings.Builder
	out.Grow(mapped.Len())
	pendingUnderscore := false
	for _, r := range mapped.String() {
		if isKeptRune(r) {
			if pendingUnderscore {
				out.WriteByte('_')
				pendingUnderscore = false
			}
			out.WriteRune(r)
			continue
		}
		pendingUnderscore = true
	}
	if pendingUnderscore {
		out.WriteByte('_')
	}
	if out.Len() == 0 {
		return "_"
	}
	return out.String()
}

// isKeptRune reports whether r survives verbatim. Everything else, including
// spaces and existing underscores, folds into a single underscore per run.
func isKeptRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	default:
		return r == '.'
	}
}

// cutTail keeps the last max bytes of an ASCII string so suffixes survive.
func cutTail(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[len(value)-max:]
}
