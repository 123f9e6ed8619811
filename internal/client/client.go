// Package client is a typed HTTP client for the recipe-share API, used by
// the recipectl command-line tool.
package client

import (
	"bytes"
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

	"github.com/sakif/recipe-share/internal/model"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the server, decoded from its JSON error
// body when there is one.
type APIError struct {
	Status  int
	Kind    string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, msg)
	}
	if e.Kind != "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%d: %s", e.Status, msg)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =========================================================================
// AUTH
// =========================================================================

type RegisterRequest struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	FullName          string `json:"fullName,omitempty"`
	CookingExperience string `json:"cookingExperience,omitempty"`
}

type AuthResponse struct {
	Profile model.Profile `json:"profile"`
	Token   string        `json:"token"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var res AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var res AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Me(ctx context.Context) (*model.Profile, error) {
	var p model.Profile
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// =========================================================================
// RECIPES
// =========================================================================

// Search runs a filtered search. Empty criteria list every published
// recipe.
func (c *Client) Search(ctx context.Context, criteria model.FilterCriteria) ([]model.RecipeView, error) {
	var views []model.RecipeView
	if err := c.do(ctx, http.MethodGet, "/api/recipes/search", criteriaQuery(criteria), nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

func (c *Client) Recipe(ctx context.Context, id string) (*model.RecipeDetail, error) {
	var d model.RecipeDetail
	if err := c.do(ctx, http.MethodGet, "/api/recipes/"+url.PathEscape(id), nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Favorite(ctx context.Context, recipeID string) error {
	return c.do(ctx, http.MethodPost, "/api/recipes/"+url.PathEscape(recipeID)+"/favorite", nil, nil, nil)
}

func (c *Client) Unfavorite(ctx context.Context, recipeID string) error {
	return c.do(ctx, http.MethodDelete, "/api/recipes/"+url.PathEscape(recipeID)+"/favorite", nil, nil, nil)
}

// Suggest asks the autocomplete endpoint. screen is "search" or
// "authoring" and picks how many names come back.
func (c *Client) Suggest(ctx context.Context, query, screen string) ([]model.Ingredient, error) {
	q := url.Values{"q": {query}}
	if screen != "" {
		q.Set("context", screen)
	}
	var items []model.Ingredient
	if err := c.do(ctx, http.MethodGet, "/api/ingredients/suggest", q, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// IngredientByName returns the ingredient with exactly this name, ignoring
// case. A missing name is an *APIError for which IsNotFound is true.
func (c *Client) IngredientByName(ctx context.Context, name string) (*model.Ingredient, error) {
	var ing model.Ingredient
	if err := c.do(ctx, http.MethodGet, "/api/ingredients/lookup", url.Values{"name": {name}}, nil, &ing); err != nil {
		return nil, err
	}
	return &ing, nil
}

func criteriaQuery(c model.FilterCriteria) url.Values {
	q := url.Values{}
	if c.Term != "" {
		q.Set("q", c.Term)
	}
	if c.CategoryID != "" {
		q.Set("category", c.CategoryID)
	}
	if c.CuisineID != "" {
		q.Set("cuisine", c.CuisineID)
	}
	if c.Difficulty != "" {
		q.Set("difficulty", string(c.Difficulty))
	}
	if c.MaxPrepTime != nil {
		q.Set("max_time", strconv.Itoa(*c.MaxPrepTime))
	}
	for _, id := range c.IngredientIDs {
		q.Add("ingredient", id)
	}
	return q
}

// do sends one request. in is JSON-encoded when non-nil; out is decoded
// from a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}
