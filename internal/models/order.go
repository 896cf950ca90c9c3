package models

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// OrderLine is one serialized cart line inside an order payload. It keeps
// enough product data to reconstruct the price the customer saw.
type OrderLine struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
}

// Order is a locally archived record of an order the backend acknowledged.
// The spreadsheet backend stays the source of truth; this row is
// best-effort bookkeeping.
type Order struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	CustomerPhone   string    `json:"customer_phone"`
	CustomerAddress string    `json:"customer_address"`
	ItemsJSON       string    `json:"items_json"`
	TotalPrice      float64   `json:"total_price"`
	Status          string    `json:"status"` // "acknowledged" once the backend accepts it
	CreatedAt       time.Time `json:"created_at"`
}

// StockRequest asks the shop to restock an out-of-stock perfume.
// Fire-and-forget: it is sent to the backend and never stored locally.
type StockRequest struct {
	ProductID   string    `json:"perfumeId"`
	ProductName string    `json:"perfumeName"`
	Timestamp   time.Time `json:"timestamp"`
}

const orderIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewOrderID generates a display order id: "ORD-" + base36 of the current
// epoch millis + "-" + 5 random base36 chars, uppercased. The backend's
// acknowledgement carries the authoritative id; this one is a client-side
// convenience in the same format.
func NewOrderID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = orderIDAlphabet[rand.Intn(len(orderIDAlphabet))]
	}
	return strings.ToUpper("ORD-" + ts + "-" + string(suffix))
}
