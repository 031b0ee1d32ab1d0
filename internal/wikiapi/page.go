package wikiapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"wsexport/internal/services"
)

// ContentSource retrieves the XHTML document for a page title.
type ContentSource interface {
	GetPage(ctx context.Context, title string) (string, error)
}

// GetPageAsync fetches the parsed latest revision of title through api.php
// and resolves with it wrapped as XHTML.
func (c *Client) GetPageAsync(ctx context.Context, title string) *Future[string] {
	query := c.QueryAsync(ctx, Params{
		"titles":  title,
		"prop":    "revisions",
		"rvprop":  "content",
		"rvparse": "true",
	})
	return Then(query, func(result map[string]any) (string, error) {
		content, err := revisionContent(result, title)
		if err != nil {
			return "", err
		}
		return WrapXHTML(c.site.Lang, content, title), nil
	})
}

func revisionContent(result map[string]any, title string) (string, error) {
	query, _ := result["query"].(map[string]any)
	pages, ok := query["pages"]
	if !ok {
		return "", &services.ProtocolError{Message: "No page information found in response"}
	}

	var candidates []map[string]any
	switch v := pages.(type) {
	case map[string]any:
		ids := make([]string, 0, len(v))
		for id := range v {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if page, ok := v[id].(map[string]any); ok {
				candidates = append(candidates, page)
			}
		}
	case []any:
		for _, item := range v {
			if page, ok := item.(map[string]any); ok {
				candidates = append(candidates, page)
			}
		}
	}

	for _, page := range candidates {
		revisions, _ := page["revisions"].([]any)
		if len(revisions) == 0 {
			continue
		}
		revision, _ := revisions[0].(map[string]any)
		for _, key := range []string{"*", "content"} {
			if content, ok := revision[key].(string); ok {
				return content, nil
			}
		}
	}
	return "", &services.NotFoundError{Title: title}
}

// QuerySource reads pages through the query API.
type QuerySource struct {
	Client *Client
}

// GetPage implements ContentSource.
func (s QuerySource) GetPage(ctx context.Context, title string) (string, error) {
	return s.Client.GetPageAsync(ctx, title).Wait()
}

// RESTSource reads rendered pages from /api/rest_v1/page/html/{title}.
type RESTSource struct {
	Client *Client
}

// GetPage implements ContentSource. A 404 reply maps to NotFoundError.
func (s RESTSource) GetPage(ctx context.Context, title string) (string, error) {
	return s.Client.GetRESTPageAsync(ctx, title).Wait()
}

// GetRESTPageAsync fetches the REST rendering of title and resolves with the
// page body wrapped as XHTML.
func (c *Client) GetRESTPageAsync(ctx context.Context, title string) *Future[string] {
	endpoint := c.baseURL + "/api/rest_v1/page/html/" + MediawikiURLEncode(title)
	return Go(ctx, func(ctx context.Context) (string, error) {
		body, err := c.get(ctx, endpoint)
		if err != nil {
			var transportErr *services.TransportError
			if errors.As(err, &transportErr) && transportErr.Status == http.StatusNotFound {
				return "", &services.NotFoundError{Title: title}
			}
			return "", err
		}
		return WrapXHTML(c.site.Lang, bodyContent(body), title), nil
	})
}

// NewContentSource returns the strategy named by kind ("query" or "rest").
func NewContentSource(kind string, client *Client) (ContentSource, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "query":
		return QuerySource{Client: client}, nil
	case "rest":
		return RESTSource{Client: client}, nil
	default:
		return nil, fmt.Errorf("wikiapi: unknown page source %q", kind)
	}
}

// bodyContent returns the serialized children of <body>, or the input as is
// when no body element is present.
func bodyContent(page []byte) string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return string(page)
	}
	body := findElement(doc, "body")
	if body == nil || body.FirstChild == nil {
		return string(page)
	}
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return string(page)
		}
	}
	return buf.String()
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// PrettyJSON renders a query result for display.
func PrettyJSON(result map[string]any) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
