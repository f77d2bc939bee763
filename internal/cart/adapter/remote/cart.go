// Package remote talks to the marketplace cart API on behalf of an
// authenticated visitor.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/samko5sam/miria/internal/cart/adapter"
	"github.com/samko5sam/miria/internal/cart/domain"
	apperrors "github.com/samko5sam/miria/pkg/errors"
	"github.com/samko5sam/miria/pkg/httpclient"
)

// Doer is the subset of the HTTP client the adapter needs. Both
// httpclient.Client and httpclient.CircuitBreakerClient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

var _ Doer = (*httpclient.CircuitBreakerClient)(nil)

// CartAdapter implements adapter.CartAdapter against the remote cart API.
// Every request carries the session's bearer token; the adapter never
// refreshes tokens itself, so expired-auth failures propagate as errors.
type CartAdapter struct {
	client  Doer
	baseURL string
	token   string
}

// NewCartAdapter creates a remote cart adapter scoped to one bearer token.
func NewCartAdapter(client Doer, baseURL, token string) *CartAdapter {
	return &CartAdapter{
		client:  client,
		baseURL: baseURL,
		token:   token,
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type mergeRequest struct {
	Items []adapter.MergeItem `json:"items"`
}

type mergeResponse struct {
	Message     string `json:"message"`
	MergedCount int    `json:"merged_count"`
}

// Fetch retrieves the canonical cart for the current identity.
func (a *CartAdapter) Fetch(ctx context.Context) (*domain.Cart, error) {
	resp, err := a.do(ctx, http.MethodGet, "/cart", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "fetch cart")
	}

	var cart domain.Cart
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, apperrors.Network(fmt.Errorf("decode cart response: %w", err))
	}
	return &cart, nil
}

// Add creates or increments a line server-side. The denormalized display
// fields in the input are ignored; the server resolves product data itself.
func (a *CartAdapter) Add(ctx context.Context, in adapter.AddInput) error {
	body := addItemRequest{ProductID: in.ProductID, Quantity: in.Quantity}
	resp, err := a.do(ctx, http.MethodPost, "/cart/items", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return httpclient.ParseResponseError(resp, "add cart item")
	}
	return nil
}

// UpdateQuantity sets the quantity of one line.
func (a *CartAdapter) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}

	path := "/cart/items/" + url.PathEscape(itemID)
	resp, err := a.do(ctx, http.MethodPut, path, updateItemRequest{Quantity: quantity})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, "update cart item")
	}
	return nil
}

// Remove deletes one line. The server treats an absent ID as not found;
// per the store contract that is reported as a no-op success here.
func (a *CartAdapter) Remove(ctx context.Context, itemID string) error {
	path := "/cart/items/" + url.PathEscape(itemID)
	resp, err := a.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return httpclient.ParseResponseError(resp, "remove cart item")
	}
}

// Clear empties the remote cart.
func (a *CartAdapter) Clear(ctx context.Context) error {
	resp, err := a.do(ctx, http.MethodDelete, "/cart/clear", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return httpclient.ParseResponseError(resp, "clear cart")
	}
	return nil
}

// Merge batch-applies the given lines to the remote cart in a single
// request and returns the number of lines the server accepted. The
// request is never retried; a retry could double-apply quantities.
func (a *CartAdapter) Merge(ctx context.Context, items []adapter.MergeItem) (int, error) {
	resp, err := a.do(ctx, http.MethodPost, "/cart/merge", mergeRequest{Items: items})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, httpclient.ParseResponseError(resp, "merge cart")
	}

	var result mergeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, apperrors.Network(fmt.Errorf("decode merge response: %w", err))
	}
	return result.MergedCount, nil
}

func (a *CartAdapter) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("marshal request body: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create %s request: %w", method, err))
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Network(err)
	}
	return resp, nil
}
