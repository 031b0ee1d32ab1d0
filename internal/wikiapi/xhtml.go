package wikiapi

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

var commentPattern = regexp.MustCompile(`(?is)<!--.+?-->`)

var rtlLanguages = map[string]struct{}{
	"ar": {}, "arc": {}, "bcc": {}, "bqi": {}, "ckb": {}, "dv": {}, "fa": {}, "glk": {}, "he": {},
	"lrc": {}, "mzn": {}, "pnb": {}, "ps": {}, "sd": {}, "ug": {}, "ur": {}, "yi": {},
}

// LanguageDirection returns "rtl" for right-to-left languages and "ltr" otherwise.
func LanguageDirection(lang string) string {
	if _, ok := rtlLanguages[lang]; ok {
		return "rtl"
	}
	return "ltr"
}

// StripComments removes HTML comments from content.
func StripComments(content string) string {
	if content == "" {
		return content
	}
	return commentPattern.ReplaceAllString(content, "")
}

// WrapXHTML strips comments from content and embeds it in a standalone XHTML
// document. The root element carries xml:lang and dir when lang is set.
func WrapXHTML(lang, content, title string) string {
	var b strings.Builder
	b.Grow(len(content) + 384)
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" ?><!DOCTYPE html><html xmlns="http://www.w3.org/1999/xhtml"`)
	if lang != "" {
		b.WriteString(` xml:lang="`)
		b.WriteString(html.EscapeString(lang))
		b.WriteString(`" dir="`)
		b.WriteString(LanguageDirection(lang))
		b.WriteString(`"`)
	}
	b.WriteString(`><head><meta content="application/xhtml+xml;charset=UTF-8" http-equiv="default-style" />`)
	b.WriteString(`<link type="text/css" rel="stylesheet" href="main.css" /><title>`)
	b.WriteString(html.EscapeString(title))
	b.WriteString(`</title></head><body>`)
	b.WriteString(StripComments(content))
	b.WriteString(`</body></html>`)
	return b.String()
}

var titleUnescaper = strings.NewReplacer(
	"%21", "!", "%24", "$", "%28", "(", "%29", ")", "%2A", "*", "%2C", ",",
	"%2D", "-", "%2E", ".", "%2F", "/", "%3A", ":", "%3B", ";", "%40", "@",
)

// MediawikiURLEncode encodes a page title the way MediaWiki builds its URLs:
// spaces become underscores and a handful of punctuation marks stay literal.
func MediawikiURLEncode(title string) string {
	return titleUnescaper.Replace(url.QueryEscape(strings.ReplaceAll(title, " ", "_")))
}
