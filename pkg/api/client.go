// Package api is the client for the recipe platform REST backend.
//
// The backend identifies the user by its session cookie, so a live
// session derives a per-user client with WithCookies from the cookies of
// the browser request that opened it.
//
// Every failing call returns an *errors.Error whose category tells the
// three failure kinds apart: transport (no response), status (non-2xx),
// payload (a response that does not report success or cannot be decoded).
// No call is retried.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/recipebox/internal/errors"
)

// TracerName is the OpenTelemetry tracer used for backend calls.
const TracerName = "recipebox/api"

// ErrNotSuccessful is wrapped by errors returned when the backend answered
// 2xx but its payload did not carry status "success".
var ErrNotSuccessful = stderrors.New("api: backend did not report success")

// StatusError is wrapped by errors returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

// Observer is notified after every backend call.
type Observer func(op string, elapsed time.Duration, err error)

// Client calls the recipe platform backend.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	cookies  []*http.Cookie
	tracer   trace.Tracer
	observer Observer
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithObserver sets a hook called after every request.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(TracerName)
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("E122").WithDetailf("backend url %q", baseURL).Wrap(err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		baseURL: u,
		http:    http.DefaultClient,
		tracer:  otel.Tracer(TracerName),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api")
	return c, nil
}

// WithCookies returns a copy of c that sends cookies with every request.
func (c *Client) WithCookies(cookies []*http.Cookie) *Client {
	cp := *c
	cp.cookies = append([]*http.Cookie(nil), cookies...)
	return &cp
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// favoritePath returns the per-recipe favorite endpoint.
func favoritePath(recipeID string) string {
	return "/users/recipes/" + url.PathEscape(recipeID) + "/favorite"
}

// AddFavorite adds recipeID to the current user's favorites.
func (c *Client) AddFavorite(ctx context.Context, recipeID string) error {
	return c.mutate(ctx, "add_favorite", http.MethodPost, favoritePath(recipeID))
}

// RemoveFavorite removes recipeID from the current user's favorites.
func (c *Client) RemoveFavorite(ctx context.Context, recipeID string) error {
	return c.mutate(ctx, "remove_favorite", http.MethodDelete, favoritePath(recipeID))
}

// Favorites returns the recipes favorited by the current user.
func (c *Client) Favorites(ctx context.Context) ([]Recipe, error) {
	var recipes []Recipe
	if err := c.do(ctx, "favorites", http.MethodGet, "/users/favorites", nil, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Recipes returns one page of the recipe listing.
func (c *Client) Recipes(ctx context.Context, page int) (*RecipePage, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{"page": {strconv.Itoa(page)}}
	var out RecipePage
	if err := c.do(ctx, "recipes", http.MethodGet, "/recipes/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// mutate issues a favorite add/remove and checks the status payload.
func (c *Client) mutate(ctx context.Context, op, method, path string) error {
	var res StatusResponse
	if err := c.do(ctx, op, method, path, nil, &res); err != nil {
		return err
	}
	if !res.OK() {
		detail := method + " " + path
		if res.Message != "" {
			detail += ": " + res.Message
		}
		return errors.New("E103").WithDetail(detail).Wrap(ErrNotSuccessful)
	}
	return nil
}

// do performs a request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, out any) (err error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "api."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Debug("backend call failed", "op", op, "error", err)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		if c.observer != nil {
			c.observer(op, time.Since(start), err)
		}
	}()

	target := c.baseURL.String() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	detail := method + " " + path

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return errors.New("E101").WithDetail(detail).Wrap(err)
	}
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.New("E101").WithDetail(detail).Wrap(err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return errors.New("E102").WithDetail(detail).Wrap(&StatusError{Code: resp.StatusCode})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.New("E104").WithDetail(detail).Wrap(err)
	}
	return nil
}
