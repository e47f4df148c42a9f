package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
	"github.com/smforson1/book-bite-sub000/internal/common"
)

// envelope is the uniform response wrapper every backend call returns.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// TokenSource supplies the current session token for outbound requests.
// Tokens may rotate, so the client asks on every call instead of caching.
type TokenSource func() string

// HTTPClient implements Client over the backend's JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

// NewHTTPClient builds a client for the given base URL. tokenSource may be
// nil for unauthenticated use.
func NewHTTPClient(baseURL string, tokenSource TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   tokenSource,
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do issues one request and decodes the envelope. A success=false envelope
// is treated identically to a transport failure: the caller gets an error.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set(common.AuthTokenHeaderName, "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.mapStatus(resp.StatusCode); err != nil {
		return err
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("%w: %s", common.ErrRejected, env.Error)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) mapStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return common.ErrUnauthorized
	case code >= 500:
		return common.ErrUnavailable
	case code >= 400:
		return fmt.Errorf("%w: http status %d", common.ErrRejected, code)
	default:
		return nil
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var data struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &data); err != nil {
		return "", nil, err
	}
	return data.Token, data.User, nil
}

func (c *HTTPClient) MarkLogin(ctx context.Context, userID string) error {
	body := map[string]string{"userId": userID}
	return c.do(ctx, http.MethodPost, "/auth/session", body, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, u *models.User) error {
	return c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(u.ID), u, nil)
}

func (c *HTTPClient) CreateBooking(ctx context.Context, b *models.Booking) (string, error) {
	var created models.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings", b, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (c *HTTPClient) UpdateBooking(ctx context.Context, b *models.Booking) error {
	return c.do(ctx, http.MethodPut, "/bookings/"+url.PathEscape(b.ID), b, nil)
}

func (c *HTTPClient) CreateOrder(ctx context.Context, o *models.Order) (string, error) {
	var created models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", o, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (c *HTTPClient) UpdateOrder(ctx context.Context, o *models.Order) error {
	return c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(o.ID), o, nil)
}

func (c *HTTPClient) CreateReview(ctx context.Context, r *models.Review) (string, error) {
	var created models.Review
	if err := c.do(ctx, http.MethodPost, "/reviews", r, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (c *HTTPClient) UpdateReview(ctx context.Context, r *models.Review) error {
	return c.do(ctx, http.MethodPut, "/reviews/"+url.PathEscape(r.ID), r, nil)
}

func (c *HTTPClient) FetchBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	var items []*models.Booking
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/bookings", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) FetchOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	var items []*models.Order
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/orders", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) FetchHotels(ctx context.Context) ([]models.Hotel, error) {
	var items []models.Hotel
	if err := c.do(ctx, http.MethodGet, "/hotels", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) FetchRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var items []models.Restaurant
	if err := c.do(ctx, http.MethodGet, "/restaurants", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) SyncCart(ctx context.Context, userID string, items []models.CartItem) error {
	return c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(userID)+"/cart", items, nil)
}

func (c *HTTPClient) BackupUploadURL(ctx context.Context) (string, error) {
	var data struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/backup/url", nil, &data); err != nil {
		return "", err
	}
	return data.URL, nil
}
