// Package prismic is a small client for the Prismic REST API v2.
//
// A Client is bound to one repository endpoint and, optionally, to a preview
// ref. It resolves the master ref on every query and performs no retries or
// caching; callers own both concerns.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxErrorBody = 512

// Client queries a single repository.
type Client struct {
	endpoint    *url.URL
	httpClient  *http.Client
	accessToken string
	ref         string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAccessToken sets the token sent with every call to a private repository.
func WithAccessToken(token string) Option {
	return func(c *Client) {
		c.accessToken = token
	}
}

// New returns a client for the repository API root, e.g.
// https://my-repo.cdn.prismic.io/api/v2.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("prismic: endpoint is required")
	}
	u, err := url.Parse(strings.TrimSuffix(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("prismic: endpoint %q must be http or https", endpoint)
	}
	c := &Client{
		endpoint:   u,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithRef returns a copy of c scoped to ref. An empty ref means the master ref.
func (c *Client) WithRef(ref string) *Client {
	scoped := *c
	scoped.ref = ref
	return &scoped
}

// Ref returns the ref this client is pinned to, or "" for master.
func (c *Client) Ref() string { return c.ref }

// Endpoint returns the repository API root.
func (c *Client) Endpoint() string { return c.endpoint.String() }

// QueryOptions are the search parameters besides predicates.
type QueryOptions struct {
	Fetch     []string
	PageSize  int
	Page      int
	Orderings []Ordering
}

// Query runs a search against the documents endpoint.
func (c *Client) Query(ctx context.Context, predicates []Predicate, opts QueryOptions) (*Response, error) {
	ref, err := c.resolveRef(ctx)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("ref", ref)
	if len(predicates) > 0 {
		params.Set("q", joinPredicates(predicates))
	}
	if len(opts.Fetch) > 0 {
		params.Set("fetch", strings.Join(opts.Fetch, ","))
	}
	if opts.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if len(opts.Orderings) > 0 {
		params.Set("orderings", joinOrderings(opts.Orderings))
	}
	if c.accessToken != "" {
		params.Set("access_token", c.accessToken)
	}

	var resp Response
	if err := c.getJSON(ctx, c.endpoint.String()+"/documents/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByUID returns the document of docType with the given uid.
func (c *Client) GetByUID(ctx context.Context, docType, uid string) (*Document, error) {
	return c.first(ctx, []Predicate{At(UIDField(docType), uid)})
}

// GetByID returns the document with the given id.
func (c *Client) GetByID(ctx context.Context, id string) (*Document, error) {
	return c.first(ctx, []Predicate{At(FieldID, id)})
}

func (c *Client) first(ctx context.Context, predicates []Predicate) (*Document, error) {
	resp, err := c.Query(ctx, predicates, QueryOptions{PageSize: 1, Page: 1})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	doc := resp.Results[0]
	return &doc, nil
}

// FetchPage follows a next_page cursor. The cursor must point at this
// repository's host; anything else fails with ErrForeignCursor.
func (c *Client) FetchPage(ctx context.Context, cursor string) (*Response, error) {
	u, err := url.Parse(cursor)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrForeignCursor
	}
	if !strings.EqualFold(u.Host, c.endpoint.Host) || !strings.HasPrefix(u.Path, c.endpoint.Path) {
		return nil, ErrForeignCursor
	}
	var resp Response
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) resolveRef(ctx context.Context) (string, error) {
	if c.ref != "" {
		return c.ref, nil
	}
	root := c.endpoint.String()
	if c.accessToken != "" {
		root += "?access_token=" + url.QueryEscape(c.accessToken)
	}
	var api API
	if err := c.getJSON(ctx, root, &api); err != nil {
		return "", fmt.Errorf("resolve master ref: %w", err)
	}
	for _, r := range api.Refs {
		if r.IsMasterRef {
			return r.Ref, nil
		}
	}
	return "", &DecodeError{Field: "refs", Err: errors.New("no master ref")}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("prismic: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("prismic: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &APIError{
			StatusCode: res.StatusCode,
			URL:        redact(req.URL),
			Body:       strings.TrimSpace(string(body)),
		}
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// redact drops the access token from URLs that end up in error messages.
func redact(u *url.URL) string {
	q := u.Query()
	if q.Get("access_token") == "" {
		return u.String()
	}
	q.Set("access_token", "REDACTED")
	cp := *u
	cp.RawQuery = q.Encode()
	return cp.String()
}
