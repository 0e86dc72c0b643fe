package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/batala/site-server-go/internal/config"
)

const (
	defaultTimeout  = 60 * time.Second
	maxErrorBody    = 64 << 10
	contentTypeJSON = "application/json"
)

// Agent talks to the site API on behalf of one admin. It attaches the bearer
// token, and when a request comes back 401 it refreshes the session once and
// replays the request once.
type Agent struct {
	baseURL   string
	http      *http.Client
	store     TokenStore
	onExpired func()
}

type Option func(*Agent)

func WithHTTPClient(c *http.Client) Option {
	return func(a *Agent) { a.http = c }
}

// WithOnExpired registers a callback run after the store is cleared because
// the session could not be refreshed.
func WithOnExpired(fn func()) Option {
	return func(a *Agent) { a.onExpired = fn }
}

func New(baseURL string, store TokenStore, opts ...Option) *Agent {
	a := &Agent{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		store:   store,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type request struct {
	method      string
	path        string
	contentType string
	payload     []byte
	// authed requests carry the bearer token and may trigger a refresh.
	authed bool
}

func jsonRequest(method, path string, body any, authed bool) (request, error) {
	req := request{method: method, path: path, authed: authed}
	if body == nil {
		return req, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return req, fmt.Errorf("encode request body: %w", err)
	}
	req.payload = payload
	req.contentType = contentTypeJSON
	return req, nil
}

// Do sends an authenticated JSON request and decodes a 2xx body into out.
// body and out may be nil.
func (a *Agent) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := jsonRequest(method, path, body, true)
	if err != nil {
		return err
	}
	return a.do(ctx, req, out)
}

func (a *Agent) do(ctx context.Context, req request, out any) error {
	resp, err := a.send(ctx, req)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && req.authed {
		discard(resp)
		if err := a.refresh(ctx); err != nil {
			return err
		}
		resp, err = a.send(ctx, req)
		if err != nil {
			return err
		}
	}

	return decodeResponse(resp, out)
}

func (a *Agent) send(ctx context.Context, req request) (*http.Response, error) {
	var body io.Reader
	if req.payload != nil {
		body = bytes.NewReader(req.payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, a.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", contentTypeJSON)

	if req.authed {
		session, err := a.store.Load()
		if err != nil {
			return nil, err
		}
		if session.AccessToken != "" {
			httpReq.Header.Set("Authorization", "Bearer "+session.AccessToken)
		}
	}

	resp, err := a.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	return resp, nil
}

// refresh trades the stored refresh cookie for a new access token. Any
// rejection from the server ends the session; transport errors do not.
func (a *Agent) refresh(ctx context.Context) error {
	session, err := a.store.Load()
	if err != nil {
		return err
	}
	if session.RefreshToken == "" {
		return a.expire()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/auth/refresh", nil)
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.AddCookie(&http.Cookie{Name: config.RefreshCookieName, Value: session.RefreshToken})

	resp, err := a.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := decodeResponse(resp, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return a.expire()
		}
		return err
	}
	if out.Token == "" {
		return a.expire()
	}

	session.AccessToken = out.Token
	log.Debug().Msg("session refreshed")
	return a.store.Save(session)
}

func (a *Agent) expire() error {
	if err := a.store.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear session")
	}
	if a.onExpired != nil {
		a.onExpired()
	}
	return ErrSessionExpired
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}
