package core

import (
	"encoding/json"

	"github.com/cockroachdb/apd/v3"
)

// OrderSide represents the direction of an order (buy or sell).
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBuy indicates an order to purchase an asset.
	SideBuy OrderSide = iota
	// SideSell indicates an order to sell an asset.
	SideSell
)

// String returns the venue wire representation of the order side ("buy" or "sell").
func (s OrderSide) String() string {
	return [...]string{"buy", "sell"}[s]
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
// It accepts both lowercase and uppercase forms.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"buy"`, `"BUY"`:
		*s = SideBuy
	case `"sell"`, `"SELL"`:
		*s = SideSell
	}
	return nil
}

// MarketPrecision holds the decimal-place precision of a market.
// The venue publishes a single decimals field, so all three values
// are derived from it.
type MarketPrecision struct {
	// Price is the number of decimal places for prices.
	Price int `json:"price"`
	// Cost is the number of decimal places for order cost.
	Cost int `json:"cost"`
	// Amount is the number of decimal places for order amounts.
	Amount int `json:"amount"`
}

// Market represents a tradable pair in canonical form.
// For this venue the canonical symbol equals the venue market code.
type Market struct {
	// ID is the venue market code (e.g., "NLG-EUR").
	ID string `json:"id"`
	// Symbol is the canonical pair code; equal to ID for this venue.
	Symbol string `json:"symbol"`
	// Active reports whether the market is open for trading.
	Active bool `json:"active"`
	// Base is the uppercase base currency code.
	Base string `json:"base"`
	// Quote is the uppercase quote currency code.
	Quote string `json:"quote"`
	// BaseID is the lowercase venue code of the base currency.
	BaseID string `json:"baseId"`
	// QuoteID is the lowercase venue code of the quote currency.
	QuoteID string `json:"quoteId"`
	// Precision holds decimal-place precision for price, cost, and amount.
	Precision MarketPrecision `json:"precision"`
	// Info is the raw venue record, kept for debugging.
	Info json.RawMessage `json:"info"`
}

// Currency represents a currency in canonical form.
type Currency struct {
	// ID is the lowercase venue currency code.
	ID string `json:"id"`
	// Code is the canonical uppercase currency code.
	Code string `json:"code"`
	// Name is the display name of the currency.
	Name string `json:"name"`
	// Active is always true; the venue has no deactivation signal.
	Active bool `json:"active"`
	// Precision is the number of decimal places.
	Precision int `json:"precision"`
	// Info is the raw venue record, kept for debugging.
	Info json.RawMessage `json:"info"`
}

// BookLevel is a single [price, amount] pair in an order book snapshot.
// Levels are kept in venue order, never re-sorted or validated.
type BookLevel struct {
	Price  apd.Decimal `json:"price"`
	Amount apd.Decimal `json:"amount"`
}

// BookSnapshot is one timestamped order book level set.
// The venue names its sides buy/sell; the canonical shape keeps buy
// but renames sell to ask.
type BookSnapshot struct {
	// Buy are the bid levels as supplied by the venue.
	Buy []BookLevel `json:"buy"`
	// Ask are the sell levels as supplied by the venue.
	Ask []BookLevel `json:"ask"`
	// Timestamp is the venue epoch, in whatever unit the venue supplies.
	Timestamp int64 `json:"timestamp"`
	// Nonce is always nil; the venue provides none.
	Nonce *int64 `json:"nonce"`
}

// RawTick is a single trade-history record passed through untouched.
// The venue publishes per-market histories without a canonical ticker
// shape; FetchTickers flattens them into one sequence of RawTicks.
type RawTick json.RawMessage

// MarshalJSON implements json.Marshaler for RawTick.
func (t RawTick) MarshalJSON() ([]byte, error) {
	return json.RawMessage(t).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler for RawTick.
func (t *RawTick) UnmarshalJSON(data []byte) error {
	return (*json.RawMessage)(t).UnmarshalJSON(data)
}

// BalanceEntry is the joined free/used/total view for one currency.
type BalanceEntry struct {
	Free  apd.Decimal `json:"free"`
	Used  apd.Decimal `json:"used"`
	Total apd.Decimal `json:"total"`
}

// Balance is the canonical account balance: three aggregate maps keyed
// by currency code plus the per-currency joined view. Every code that
// appears in any of the three venue buckets has entries in all three
// maps; missing buckets are zero.
type Balance struct {
	Free   map[string]apd.Decimal  `json:"free"`
	Used   map[string]apd.Decimal  `json:"used"`
	Total  map[string]apd.Decimal  `json:"total"`
	Assets map[string]BalanceEntry `json:"assets"`
	// Info holds the raw per-currency venue records.
	Info json.RawMessage `json:"info"`
}

// Order represents an order in canonical form. Status, type, time in
// force, and symbol are venue strings passed through unchanged; the
// venue does not distinguish order ID from client order ID, so both
// carry the venue uuid.
type Order struct {
	ID            string `json:"id"`
	ClientOrderID string `json:"clientOrderId"`
	// Datetime is the venue created_at value as supplied.
	Datetime string `json:"datetime"`
	// Timestamp is the creation time as truncated epoch seconds.
	Timestamp int64 `json:"timestamp"`
	// LastTradeTimestamp is the update time as truncated epoch seconds.
	LastTradeTimestamp int64     `json:"lastTradeTimestamp"`
	Status             string    `json:"status"`
	Symbol             string    `json:"symbol"`
	Type               string    `json:"type"`
	TimeInForce        string    `json:"timeInForce"`
	Side               OrderSide `json:"side"`
	// Amount is the ordered quantity.
	Amount apd.Decimal `json:"amount"`
	// Filled is the executed quantity.
	Filled apd.Decimal `json:"filled"`
	// Cost is the executed cost in quote currency.
	Cost apd.Decimal `json:"cost"`
	// Info is the raw venue record, kept for debugging.
	Info json.RawMessage `json:"info"`
}
