// Package network is the facade (C11) the rest of the module uses to
// resolve URLs and fetch metadata documents: a single shared HTTP
// client, with proxy settings coming from the environment exactly as
// net/http already does by default.
package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client wraps a shared, immutable *http.Client. A single Client is
// constructed once in cmd/dezoomify-go/main.go and handed to the
// orchestrator, which fetches metadata documents through it on behalf of
// the dezoomers and passes its *http.Client to the downloader, matching
// the "HTTP client is shared immutably" requirement of the concurrency
// model.
type Client struct {
	HTTP    *http.Client
	Headers map[string]string
}

// NewClient builds a Client. Proxy support comes from
// http.ProxyFromEnvironment, which is http.DefaultTransport's default
// and honors the conventional HTTP_PROXY/http_proxy/HTTPS_PROXY/
// https_proxy/NO_PROXY variables.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 64,
	}
	return &Client{
		HTTP:    &http.Client{Transport: transport, Timeout: timeout},
		Headers: headers,
	}
}

// Fetch retrieves uri's body, applying the client's configured headers.
func (c *Client) Fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("network: build request for %s: %w", uri, err)
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network: fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("network: fetch %s: unexpected status %d", uri, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("network: read body of %s: %w", uri, err)
	}
	return body, nil
}

// ResolveRelative resolves rel against base per RFC 3986, exercising the
// exact cases named by the specification's testable properties:
// "../a/b", "/a/b", "a/b", and a full URL (which is returned unchanged).
func ResolveRelative(base, rel string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("network: parse base %q: %w", base, err)
	}
	relURL, err := url.Parse(rel)
	if err != nil {
		return "", fmt.Errorf("network: parse relative %q: %w", rel, err)
	}
	return baseURL.ResolveReference(relURL).String(), nil
}
