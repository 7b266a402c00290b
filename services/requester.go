// ABOUTME: Authenticated HTTP requester for the upstream resource API
// ABOUTME: Every call gets a refresh preflight, a bearer header, and classified errors

package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
	"github.com/google/uuid"

	"github.com/calvora/ops-console/backend/models"
)

// maxResponseBody caps how much of an upstream body is read.
const maxResponseBody = 16 << 20

// Response is a completed upstream call. Body is fully read and the
// connection is already released.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON unmarshals the response body into out.
func (r *Response) JSON(out any) error {
	return json.Unmarshal(r.Body, out)
}

// Document parses the body as a resource document.
func (r *Response) Document() (*models.ResourceDocument, error) {
	var doc models.ResourceDocument
	if err := json.Unmarshal(r.Body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// RequestOptions describes a single upstream call. Body takes precedence
// over RawBody when both are set.
type RequestOptions struct {
	Method      string
	Query       url.Values
	Body        any
	RawBody     []byte
	ContentType string
	Header      http.Header
}

// RequesterConfig carries the transport settings for the upstream API.
type RequesterConfig struct {
	BaseURL           string
	SkipSSLValidation bool
	AllProxy          string
	Timeout           time.Duration
}

// Requester issues authenticated requests against the upstream resource
// API. It is safe for concurrent use.
type Requester struct {
	client      *http.Client
	baseURL     string
	tokens      *TokenStore
	coordinator *TokenRefreshCoordinator
	classifier  *Classifier
}

// NewRequester builds a requester from config. The refresh coordinator may
// be nil for unauthenticated endpoints.
func NewRequester(cfg RequesterConfig, tokens *TokenStore, coordinator *TokenRefreshCoordinator, classifier *Classifier) *Requester {
	transport := &http.Transport{
		TLSHandshakeTimeout: 30 * time.Second,
	}
	if cfg.SkipSSLValidation {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cfg.AllProxy != "" {
		if dialContextFunc := createSOCKS5DialContextFunc(cfg.AllProxy); dialContextFunc != nil {
			transport.DialContext = dialContextFunc
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Requester{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:      tokens,
		coordinator: coordinator,
		classifier:  classifier,
	}
}

// Client exposes the underlying HTTP client so the refresh coordinator can
// share the same transport.
func (r *Requester) Client() *http.Client {
	return r.client
}

// SetCoordinator installs the refresh coordinator after construction. The
// coordinator needs the requester's client, so the two are wired in two
// steps.
func (r *Requester) SetCoordinator(c *TokenRefreshCoordinator) {
	r.coordinator = c
}

// BaseURL returns the configured upstream base URL without a trailing slash.
func (r *Requester) BaseURL() string {
	return r.baseURL
}

// Do runs one upstream call. Path is joined to the base URL. A refresh
// preflight runs first; its failure fails the request before anything is
// sent. Non-2xx responses come back as *models.APIError.
func (r *Requester) Do(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	if r.coordinator != nil {
		if err := r.coordinator.EnsureFresh(ctx); err != nil {
			return nil, fmt.Errorf("token refresh before request failed: %w", err)
		}
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	endpoint := r.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(opts.Query) > 0 {
		endpoint += "?" + opts.Query.Encode()
	}

	var reqBody io.Reader
	contentType := ""
	switch {
	case opts.Body != nil:
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
		contentType = "application/json"
	case opts.RawBody != nil:
		reqBody = bytes.NewReader(opts.RawBody)
		contentType = opts.ContentType
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range opts.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if state := r.tokens.Load(); state.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+state.AccessToken)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, r.classifier.Network(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, r.classifier.Network(endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, r.classifier.Classify(endpoint, resp.StatusCode, resp.Header.Get("Content-Type"), body)
	}

	if len(body) > 0 && !json.Valid(body) {
		return nil, r.classifier.Malformed(endpoint, resp.StatusCode, "response body is not valid JSON")
	}

	slog.Debug("Upstream request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// createSOCKS5DialContextFunc creates a dial function for SSH+SOCKS5 proxy connections.
// Supports format: ssh+socks5://user@host:port?private-key=/path/to/key
func createSOCKS5DialContextFunc(allProxy string) func(ctx context.Context, network, address string) (net.Conn, error) {
	// Strip ssh+ prefix if present
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		slog.Error("Failed to parse API_ALL_PROXY URL", "error", err)
		return nil
	}

	queryMap, err := url.ParseQuery(proxyURL.RawQuery)
	if err != nil {
		slog.Error("Failed to parse API_ALL_PROXY query params", "error", err)
		return nil
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	proxySSHKeyPath := queryMap.Get("private-key")
	if proxySSHKeyPath == "" {
		slog.Error("API_ALL_PROXY missing required 'private-key' query param")
		return nil
	}

	proxySSHKey, err := os.ReadFile(proxySSHKeyPath)
	if err != nil {
		slog.Error("Failed to read SSH private key", "path", proxySSHKeyPath, "error", err)
		return nil
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		haveDialer := dialer != nil
		mut.RUnlock()

		if haveDialer {
			return dialer(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(proxySSHKey), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}
}
