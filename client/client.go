// Package client is the portal's protocol client: the upload pipeline, the
// verification-code protocol, the handover lifecycle and the session result
// cache, expressed as plain request/response calls so any presentation layer
// can drive them. It performs no retries and imposes no deadlines of its own;
// cancellation and timeouts belong to the supplied context and transport.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// TokenSource yields the caller's bearer token for the current session, or
// ("", nil) when no one is signed in. Injecting the capability keeps the
// client independent of any particular identity provider's lifecycle.
type TokenSource func(ctx context.Context) (string, error)

// Client talks to the portal backend. Construct one per session together
// with its result cache; both are discarded when the session ends.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	cache   *ResultCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport (useful for tests and custom TLS).
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithResultCache supplies an externally owned verification result cache.
func WithResultCache(cache *ResultCache) Option {
	return func(c *Client) { c.cache = cache }
}

// New creates a session-scoped client. tokens may be nil for a client that
// only ever performs anonymous operations.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   http.DefaultClient,
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewResultCache()
	}
	return c
}

// Cache exposes the session's verification result cache.
func (c *Client) Cache() *ResultCache { return c.cache }

// ListItems fetches the public gallery.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	var list []Item
	if err := c.getJSON(ctx, "/items", "", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListUploaded fetches the items the signed-in caller reported.
func (c *Client) ListUploaded(ctx context.Context) ([]Item, error) {
	return c.listUserItems(ctx, "uploaded")
}

// ListClaimed fetches the items the signed-in caller claimed.
func (c *Client) ListClaimed(ctx context.Context) ([]Item, error) {
	return c.listUserItems(ctx, "claimed")
}

func (c *Client) listUserItems(ctx context.Context, kind string) ([]Item, error) {
	token, err := c.requireToken(ctx)
	if err != nil {
		return nil, err
	}
	var list []Item
	if err := c.getJSON(ctx, "/user/items?type="+kind, token, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// requireToken fetches the caller's token and fails with
// ErrAuthenticationRequired before any network round trip when there is none.
func (c *Client) requireToken(ctx context.Context) (string, error) {
	token, err := c.optionalToken(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrAuthenticationRequired
	}
	return token, nil
}

// optionalToken fetches a token when one is available. A missing token is not
// an error here; operations that allow anonymous callers just omit the header.
func (c *Client) optionalToken(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	token, err := c.tokens(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching identity token: %w", err)
	}
	return token, nil
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, token, out)
}

func (c *Client) postJSON(ctx context.Context, path, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, token, out)
}

func (c *Client) doJSON(req *http.Request, token string, out any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// Some deployments answer success with an empty body; leave out as the
		// caller's zero value instead of failing.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// apiError translates a backend rejection into the client's error taxonomy.
// Conflicts are disambiguated by the body's stable error code; the wording of
// the message is display material, not protocol.
func apiError(resp *http.Response) error {
	msg, code := errorBody(resp.Body)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthenticationRequired
	case http.StatusForbidden:
		if msg == "" {
			msg = "you are not permitted to perform this action"
		}
		return &AuthorizationError{Msg: msg}
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		switch code {
		case "already_claimed":
			return ErrAlreadyClaimed
		case "invalid_state":
			return ErrInvalidState
		case "":
			// Older deployments sent only a message.
			if strings.Contains(msg, "claimed") {
				return ErrAlreadyClaimed
			}
			return ErrInvalidState
		default:
			return &APIError{StatusCode: resp.StatusCode, Msg: msg}
		}
	case http.StatusGone:
		return ErrItemAlreadyHandedOver
	default:
		return &APIError{StatusCode: resp.StatusCode, Msg: msg}
	}
}

// errorBody pulls the backend's {"message", "code"} out of an error body.
func errorBody(body io.Reader) (msg, code string) {
	var payload struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return "", ""
	}
	return payload.Message, payload.Code
}

// IsAuthorizationError reports whether err is an entitlement failure, so
// surfaces can distinguish "not permitted" from a generic failure.
func IsAuthorizationError(err error) bool {
	var authz *AuthorizationError
	return errors.As(err, &authz)
}
