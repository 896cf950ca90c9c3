package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"parfum/internal/models"
)

// DefaultTimeout bounds every round trip to the Apps Script proxy. The
// proxy has no SLA, so an explicit cap keeps a stuck request from holding
// a checkout open forever.
const DefaultTimeout = 10 * time.Second

// Routes understood by the Apps Script web app.
const (
	routeProducts     = "products"
	routePlaceOrder   = "place-order"
	routeRequestStock = "request-perfume"
)

// Config holds connection details for the spreadsheet proxy.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Google Apps Script web app that fronts the shop
// spreadsheet. One attempt per call, no retries; callers decide whether
// the user retries manually.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new spreadsheet proxy client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope is the common response wrapper the Apps Script returns.
type envelope struct {
	Success bool              `json:"success"`
	Data    []json.RawMessage `json:"data"`
	OrderID string            `json:"orderId"`
	Error   string            `json:"error"`
}

// FetchProducts performs one catalog read. Rows missing an id or a name
// are dropped; untyped fields are coerced (see decodeProduct). Callers
// own the fallback policy; this method only reports what went wrong.
func (c *Client) FetchProducts(ctx context.Context) ([]models.Product, error) {
	const op = "fetch products"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?route="+routeProducts, nil)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Op: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &MalformedResponseError{Op: op, Reason: "not valid JSON"}
	}
	if !env.Success || env.Data == nil {
		return nil, &MalformedResponseError{Op: op, Reason: "missing success envelope"}
	}

	products := make([]models.Product, 0, len(env.Data))
	for _, raw := range env.Data {
		p, ok := decodeProduct(raw)
		if !ok {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// orderPayload matches the place-order sheet row contract.
type orderPayload struct {
	CustomerName    string             `json:"customerName"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerPhone   string             `json:"customerPhone"`
	CustomerAddress string             `json:"customerAddress"`
	Items           []models.OrderLine `json:"items"`
	TotalPrice      float64            `json:"totalPrice"`
}

// PlaceOrder writes one order row and returns the backend-issued order id.
func (c *Client) PlaceOrder(ctx context.Context, info models.CustomerInfo, items []models.OrderLine, totalPrice float64) (string, error) {
	const op = "place order"

	payload := orderPayload{
		CustomerName:    info.Name,
		CustomerEmail:   info.Email,
		CustomerPhone:   info.Phone,
		CustomerAddress: info.Address,
		Items:           items,
		TotalPrice:      totalPrice,
	}

	env, err := c.post(ctx, op, routePlaceOrder, payload)
	if err != nil {
		return "", err
	}
	if env.OrderID == "" {
		// Backend said yes but forgot the id; fall back to the local format.
		return models.NewOrderID(), nil
	}
	return env.OrderID, nil
}

// RequestStock writes one restock-request row. Fire-and-forget on the
// caller's side; the timestamp is recorded by the sheet.
func (c *Client) RequestStock(ctx context.Context, req models.StockRequest) error {
	const op = "request stock"

	payload := map[string]string{
		"perfumeId":   req.ProductID,
		"perfumeName": req.ProductName,
	}
	_, err := c.post(ctx, op, routeRequestStock, payload)
	return err
}

// post sends one JSON body to the given route and interprets the common
// envelope. Apps Script web apps reject preflighted content types, so the
// body goes out as text/plain exactly like the sheet expects.
func (c *Client) post(ctx context.Context, op, route string, payload interface{}) (*envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("sheets: %s: marshal payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"?route="+route, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	// The envelope is decoded before the status check: the backend reports
	// failures like rate limiting with both an error status and an error
	// message, and the message is the part worth showing the shopper.
	var env envelope
	if jsonErr := json.Unmarshal(respBody, &env); jsonErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &NetworkError{Op: op, Status: resp.StatusCode}
		}
		return nil, &MalformedResponseError{Op: op, Reason: "not valid JSON"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if env.Error != "" {
			return nil, &BackendError{Message: env.Error}
		}
		return nil, &NetworkError{Op: op, Status: resp.StatusCode}
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "the order backend rejected the request"
		}
		return nil, &BackendError{Message: msg}
	}
	return &env, nil
}
