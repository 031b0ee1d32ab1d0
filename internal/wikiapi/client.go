package wikiapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wsexport/internal/logging"
	"wsexport/internal/services"
)

const (
	// DefaultUserAgent identifies the exporter to the wiki.
	DefaultUserAgent = "Wikisource Export/0.1"
	// DefaultConnectTimeout bounds dialing the wiki.
	DefaultConnectTimeout = 10 * time.Second
	// DefaultRequestTimeout bounds one whole request.
	DefaultRequestTimeout = 60 * time.Second

	apiPath = "/w/api.php"
)

// Params holds API request parameters.
type Params map[string]string

func (p Params) clone() Params {
	out := make(Params, len(p)+2)
	for key, value := range p {
		out[key] = value
	}
	return out
}

// Client issues requests against one wiki.
type Client struct {
	httpClient     *http.Client
	site           Site
	scheme         string
	baseURL        string
	userAgent      string
	connectTimeout time.Duration
	requestTimeout time.Duration
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL sends every request to baseURL instead of scheme://domain.
// The resolved site still determines the document language.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithScheme selects http or https for the resolved domain.
func WithScheme(scheme string) Option {
	return func(c *Client) {
		if scheme = strings.TrimSpace(scheme); scheme != "" {
			c.scheme = scheme
		}
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent = strings.TrimSpace(userAgent); userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeouts overrides the connect and request timeouts of the default
// HTTP client. Zero values keep the defaults.
func WithTimeouts(connect, request time.Duration) Option {
	return func(c *Client) {
		if connect > 0 {
			c.connectTimeout = connect
		}
		if request > 0 {
			c.requestTimeout = request
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New constructs a client for the wiki serving lang.
func New(lang string, opts ...Option) (*Client, error) {
	c := &Client{
		site:           ResolveSite(lang),
		scheme:         "https",
		userAgent:      DefaultUserAgent,
		connectTimeout: DefaultConnectTimeout,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.scheme != "http" && c.scheme != "https" {
		return nil, fmt.Errorf("wikiapi: unsupported scheme %q", c.scheme)
	}
	c.logger = logging.NewComponentLogger(c.logger, "wikiapi")
	if c.baseURL == "" {
		c.baseURL = c.scheme + "://" + c.site.Domain
	}
	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("wikiapi: invalid base url: %w", err)
	}
	if c.httpClient == nil {
		dialer := &net.Dialer{Timeout: c.connectTimeout}
		c.httpClient = &http.Client{
			Timeout: c.requestTimeout,
			Transport: &loggingTransport{
				base: &http.Transport{
					Proxy:               http.ProxyFromEnvironment,
					DialContext:         dialer.DialContext,
					TLSHandshakeTimeout: c.connectTimeout,
					MaxIdleConnsPerHost: 4,
				},
				logger: c.logger,
			},
		}
	}
	return c, nil
}

// Domain returns the wiki host name.
func (c *Client) Domain() string {
	return c.site.Domain
}

// BaseURL returns the scheme and host requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Lang returns the content language, empty for multilingual wikis.
func (c *Client) Lang() string {
	return c.site.Lang
}

// GetAsync fetches rawURL and resolves with the body of a 200 response.
// Any other status, or a failed round trip, yields a TransportError.
func (c *Client) GetAsync(ctx context.Context, rawURL string) *Future[[]byte] {
	return Go(ctx, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, rawURL)
	})
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &services.TransportError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &services.TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &services.TransportError{URL: rawURL, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		message, _ := ExtractErrorMessage(resp, body)
		return nil, &services.TransportError{URL: rawURL, Status: resp.StatusCode, Message: message}
	}
	return body, nil
}

// QueryAsync runs an action=query request and decodes the JSON reply.
// Caller params take precedence over the action and format defaults.
func (c *Client) QueryAsync(ctx context.Context, params Params) *Future[map[string]any] {
	values := url.Values{"action": {"query"}, "format": {"json"}}
	for key, value := range params {
		values.Set(key, value)
	}
	endpoint := c.baseURL + apiPath + "?" + values.Encode()
	return Then(c.GetAsync(ctx, endpoint), decodeQuery)
}

// Query is the blocking form of QueryAsync.
func (c *Client) Query(ctx context.Context, params Params) (map[string]any, error) {
	return c.QueryAsync(ctx, params).Wait()
}

func decodeQuery(body []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var result map[string]any
	if err := decoder.Decode(&result); err != nil {
		return nil, &services.ProtocolError{RawBody: string(body), Err: err}
	}
	if result == nil {
		return nil, &services.ProtocolError{RawBody: string(body), Err: errors.New("expected a JSON object")}
	}
	if apiErr, ok := result["error"].(map[string]any); ok {
		return nil, &services.ProtocolError{
			RawBody: string(body),
			Message: fmt.Sprintf("api error %v: %v", apiErr["code"], apiErr["info"]),
		}
	}
	return result, nil
}

// CompleteQuery follows continuation tokens until the server stops sending
// them and returns every round merged into one result. Rounds run strictly in
// sequence because each request depends on the previous reply. The context is
// checked between rounds. The continue object itself is not part of the
// merged result.
func (c *Client) CompleteQuery(ctx context.Context, params Params) (map[string]any, error) {
	next := params.clone()
	merged := make(map[string]any)

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := c.Query(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("query round %d: %w", round, err)
		}

		cont, hasContinue := result["continue"].(map[string]any)
		delete(result, "continue")
		merged = mergeResult(merged, result)

		if !hasContinue {
			c.logger.Debug("query complete", logging.Int("rounds", round))
			return merged, nil
		}
		for key, value := range cont {
			next[key] = fmt.Sprint(value)
		}
	}
}
