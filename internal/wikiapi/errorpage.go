package wikiapi

import (
	"bytes"
	"mime"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const errorPageMarker = "<title>Wikimedia Error</title>"

var wikisourceHost = regexp.MustCompile(`^(.*\.)?wikisource\.org$`)

// ExtractErrorMessage builds a readable diagnostic from an HTML error reply.
// It returns false when resp is nil or not HTML. Wikimedia error pages
// contribute their technical details to the message.
func ExtractErrorMessage(resp *http.Response, body []byte) (string, bool) {
	if resp == nil {
		return "", false
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "text/html" {
		return "", false
	}

	message := "Error performing an external request"
	if resp.Request != nil && resp.Request.URL != nil && wikisourceHost.MatchString(resp.Request.URL.Hostname()) {
		message = "Wikisource servers returned an error"
	}
	if !bytes.Contains(body, []byte(errorPageMarker)) {
		return message, true
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return message, true
	}
	text := technicalDetails(doc)
	if text == "" {
		text = codeBlocks(doc)
	}
	if text == "" {
		return message, true
	}
	return message + ": " + text, true
}

// technicalDetails returns the text of the TechnicalStuff block that wraps an
// AdditionalTechnicalStuff div, as rendered by the wmerrors extension.
func technicalDetails(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "AdditionalTechnicalStuff") {
		if parent := n.Parent; parent != nil && getAttr(parent, "class") == "TechnicalStuff" {
			return strings.TrimSpace(extractText(parent))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := technicalDetails(c); text != "" {
			return text
		}
	}
	return ""
}

// codeBlocks joins the text of every <code> element, one per line.
func codeBlocks(root *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "code" {
			parts = append(parts, extractText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func hasClass(n *html.Node, class string) bool {
	return strings.Contains(getAttr(n, "class"), class)
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(extractText(c))
	}
	return b.String()
}
