package wikiapi

import (
	"regexp"
	"strings"
)

const (
	rootDomain       = "wikisource.org"
	wikilivresDomain = "wikilivres.ca"
)

var wikibooksPattern = regexp.MustCompile(`^([a-z_]{2,})-?wikibooks$`)

// Site is a resolved wiki host and the content language it serves.
type Site struct {
	Domain string
	Lang   string
}

// ResolveSite maps a language code to the wiki that hosts it.
func ResolveSite(code string) Site {
	code = strings.TrimSpace(code)
	switch code {
	case "", "www":
		return Site{Domain: rootDomain}
	case "wl", "wikilivres":
		return Site{Domain: wikilivresDomain}
	}
	if m := wikibooksPattern.FindStringSubmatch(code); m != nil {
		return Site{Domain: m[1] + ".wikibooks.org", Lang: m[1]}
	}
	return Site{Domain: code + "." + rootDomain, Lang: code}
}
