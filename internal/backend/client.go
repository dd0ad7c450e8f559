// Package backend is a typed client for the remote backend-as-a-service that
// owns sessions, accounts, object storage and the document database.
package backend

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// defaultTimeout bounds every remote call so a hanging backend cannot hang
// the caller indefinitely.
const defaultTimeout = 15 * time.Second

// Options configures a Client.
type Options struct {
	Endpoint  string
	ProjectID string
	APIKey    string
	Timeout   time.Duration
}

// Client issues authenticated requests against the backend REST API.
type Client struct {
	http     *resty.Client
	endpoint string
	project  string
}

// New constructs a Client. The API key authenticates the service itself;
// user-scoped calls additionally carry the session token from the context.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	endpoint := strings.TrimSuffix(opts.Endpoint, "/")

	httpClient := resty.New().
		SetBaseURL(endpoint).
		SetHeader("X-Project-Id", opts.ProjectID).
		SetTimeout(timeout)

	if opts.APIKey != "" {
		httpClient.SetHeader("X-Api-Key", opts.APIKey)
	}

	return &Client{
		http:     httpClient,
		endpoint: endpoint,
		project:  opts.ProjectID,
	}
}

type sessionTokenKey struct{}

// WithSessionToken returns a context whose backend requests act on behalf of
// the given user session.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey{}, token)
}

// SessionTokenFromContext reports the session token carried by ctx, if any.
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(sessionTokenKey{}).(string)
	return token, ok && token != ""
}

func sessionTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(sessionTokenKey{}).(string)
	return token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token := sessionTokenFrom(ctx); token != "" {
		req.SetHeader("X-Session-Token", token)
	}
	return req
}

// checkResponse maps non-2xx responses to an *APIError.
func checkResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode()}
	if err := json.Unmarshal(resp.Body(), apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(resp.String())
	}
	apiErr.Status = resp.StatusCode()
	return apiErr
}
