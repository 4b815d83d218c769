// Package moltin implements the HTTP client for the Elasticpath-style commerce
// backend: token acquisition, catalog reads, cart mutations, and customer
// registration. Calls are pure request/response with no retries or caching;
// every non-2xx response surfaces as *APIError to the caller.
package moltin

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

	"tg_shop_bot/internal/config"
	"tg_shop_bot/internal/domain"
)

const (
	defaultRequestTimeout = 10 * time.Second
	errorBodyLimit        = 512
)

// APIError reports a non-2xx response from the commerce backend.
type APIError struct {
	Status   int
	Endpoint string
	Body     string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("commerce backend returned %d for %s", e.Status, e.Endpoint)
	}
	return fmt.Sprintf("commerce backend returned %d for %s: %s", e.Status, e.Endpoint, e.Body)
}

// Client performs authenticated calls against the commerce backend. The zero
// value is not usable; construct it with NewClient.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewClient builds a commerce client from configuration. A nil httpClient gets
// a default one with a bounded timeout.
func NewClient(cfg config.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.CommerceBaseURL, "/"),
		clientID:     cfg.CommerceClientID,
		clientSecret: cfg.CommerceSecret,
		httpClient:   httpClient,
	}
}

// AccessToken acquires a fresh bearer token via the client_credentials grant.
// Tokens are never cached; the dispatcher requests one per inbound event.
func (c *Client) AccessToken(ctx context.Context) (domain.Token, error) {
	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	var token domain.Token
	err := c.do(ctx, http.MethodPost, "/oauth/access_token", "",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &token)
	if err != nil {
		return domain.Token{}, fmt.Errorf("acquire access token: %w", err)
	}
	if token.AccessToken == "" {
		return domain.Token{}, errors.New("acquire access token: empty token in response")
	}

	return token, nil
}

// Products lists the catalog.
func (c *Client) Products(ctx context.Context, token string) ([]domain.Product, error) {
	var payload struct {
		Data []productResource `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/pcm/products", token, nil, "", &payload); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]domain.Product, 0, len(payload.Data))
	for _, res := range payload.Data {
		products = append(products, res.toDomain())
	}
	return products, nil
}

// Product fetches a single catalog entry by id.
func (c *Client) Product(ctx context.Context, token, productID string) (domain.Product, error) {
	var payload struct {
		Data productResource `json:"data"`
	}
	endpoint := "/pcm/products/" + url.PathEscape(productID)
	if err := c.do(ctx, http.MethodGet, endpoint, token, nil, "", &payload); err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", productID, err)
	}

	return payload.Data.toDomain(), nil
}

// Cart fetches the cart totals for a chat. Carts are keyed by the decimal chat
// id; the backend creates them implicitly on first access.
func (c *Client) Cart(ctx context.Context, token string, chatID int64) (domain.CartSummary, error) {
	var payload struct {
		Data struct {
			Meta struct {
				DisplayPrice struct {
					WithTax struct {
						Formatted string `json:"formatted"`
					} `json:"with_tax"`
				} `json:"display_price"`
			} `json:"meta"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/carts/"+cartRef(chatID), token, nil, "", &payload); err != nil {
		return domain.CartSummary{}, fmt.Errorf("get cart: %w", err)
	}

	return domain.CartSummary{Total: payload.Data.Meta.DisplayPrice.WithTax.Formatted}, nil
}

// CartItems fetches the line items of a chat's cart.
func (c *Client) CartItems(ctx context.Context, token string, chatID int64) ([]domain.CartItem, error) {
	var payload struct {
		Data []cartItemResource `json:"data"`
	}
	endpoint := "/v2/carts/" + cartRef(chatID) + "/items"
	if err := c.do(ctx, http.MethodGet, endpoint, token, nil, "", &payload); err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}

	items := make([]domain.CartItem, 0, len(payload.Data))
	for _, res := range payload.Data {
		items = append(items, res.toDomain())
	}
	return items, nil
}

// AddCartItem adds quantity units of a product to the chat's cart. Adding an
// already-present product updates its quantity backend-side.
func (c *Client) AddCartItem(ctx context.Context, token string, chatID int64, productID string, quantity int) error {
	body := map[string]any{
		"data": map[string]any{
			"id":       productID,
			"type":     "cart_item",
			"quantity": quantity,
		},
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode cart item: %w", err)
	}

	endpoint := "/v2/carts/" + cartRef(chatID) + "/items"
	if err := c.do(ctx, http.MethodPost, endpoint, token, bytes.NewReader(encoded), "application/json", nil); err != nil {
		return fmt.Errorf("add cart item %s: %w", productID, err)
	}
	return nil
}

// RemoveCartItem deletes one line item from the chat's cart.
func (c *Client) RemoveCartItem(ctx context.Context, token string, chatID int64, itemID string) error {
	endpoint := "/v2/carts/" + cartRef(chatID) + "/items/" + url.PathEscape(itemID)
	if err := c.do(ctx, http.MethodDelete, endpoint, token, nil, "", nil); err != nil {
		return fmt.Errorf("remove cart item %s: %w", itemID, err)
	}
	return nil
}

// ImageURL resolves a file id into a public image URL.
func (c *Client) ImageURL(ctx context.Context, token, fileID string) (string, error) {
	var payload struct {
		Data struct {
			Link struct {
				Href string `json:"href"`
			} `json:"link"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/files/"+url.PathEscape(fileID), token, nil, "", &payload); err != nil {
		return "", fmt.Errorf("resolve image %s: %w", fileID, err)
	}

	return payload.Data.Link.Href, nil
}

// CreateCustomer registers the chat's email against a customer record named
// after the chat id.
func (c *Client) CreateCustomer(ctx context.Context, token string, chatID int64, email string) error {
	body := map[string]any{
		"data": map[string]any{
			"type":  "customer",
			"name":  cartRef(chatID),
			"email": email,
		},
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode customer: %w", err)
	}

	if err := c.do(ctx, http.MethodPost, "/v2/customers", token, bytes.NewReader(encoded), "application/json", nil); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, body io.Reader, contentType string, out any) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", endpoint, err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &APIError{
			Status:   resp.StatusCode,
			Endpoint: endpoint,
			Body:     strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

func cartRef(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

type productResource struct {
	ID         string `json:"id"`
	Attributes struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		SKU         string `json:"sku"`
	} `json:"attributes"`
	Relationships struct {
		MainImage struct {
			Data *struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"main_image"`
	} `json:"relationships"`
}

func (r productResource) toDomain() domain.Product {
	product := domain.Product{
		ID:          r.ID,
		SKU:         r.Attributes.SKU,
		Name:        r.Attributes.Name,
		Description: r.Attributes.Description,
	}
	if r.Relationships.MainImage.Data != nil {
		product.ImageID = r.Relationships.MainImage.Data.ID
	}
	return product
}

type cartItemResource struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Meta      struct {
		DisplayPrice struct {
			WithTax struct {
				Unit struct {
					Formatted string `json:"formatted"`
				} `json:"unit"`
				Value struct {
					Formatted string `json:"formatted"`
				} `json:"value"`
			} `json:"with_tax"`
		} `json:"display_price"`
	} `json:"meta"`
}

func (r cartItemResource) toDomain() domain.CartItem {
	return domain.CartItem{
		ID:        r.ID,
		ProductID: r.ProductID,
		Name:      r.Name,
		Quantity:  r.Quantity,
		UnitPrice: r.Meta.DisplayPrice.WithTax.Unit.Formatted,
		LineTotal: r.Meta.DisplayPrice.WithTax.Value.Formatted,
	}
}
