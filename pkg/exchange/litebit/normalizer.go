package litebit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"

	"tradekit/pkg/core"
)

// envelope is the wrapper around every venue response payload.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// rawMarket is the venue market record.
type rawMarket struct {
	Code          string      `json:"code"`
	IsActive      bool        `json:"is_active"`
	Decimals      int         `json:"decimals"`
	BaseCurrency  currencyRef `json:"base_currency"`
	QuoteCurrency currencyRef `json:"quote_currency"`
}

// currencyRef wraps a nested currency record.
type currencyRef struct {
	Data rawCurrency `json:"data"`
}

// rawCurrency is the venue currency record.
type rawCurrency struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

// rawBook is one venue order book snapshot. The venue calls its bid
// side "buy" and its ask side "sell".
type rawBook struct {
	Buy       [][]json.Number `json:"buy"`
	Sell      [][]json.Number `json:"sell"`
	Timestamp int64           `json:"timestamp"`
}

// rawBucket is one {currency, amount} pair inside a balance record.
type rawBucket struct {
	Currency string      `json:"currency"`
	Amount   json.Number `json:"amount"`
}

// rawBalance is one per-currency venue balance record.
type rawBalance struct {
	Available *rawBucket `json:"available"`
	Reserved  *rawBucket `json:"reserved"`
	Total     *rawBucket `json:"total"`
}

// rawOrder is the venue order record. The venue spells the update field
// updated_At in one API version; the adapter reads the canonical
// updated_at and falls back to the misspelled form.
type rawOrder struct {
	UUID         string      `json:"uuid"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
	UpdatedAtTyp string      `json:"updated_At"`
	Status       string      `json:"status"`
	TradeMarket  string      `json:"trade_market"`
	Type         string      `json:"type"`
	TimeInForce  string      `json:"time_in_force"`
	Side         string      `json:"side"`
	Amount       json.Number `json:"amount"`
	AmountFilled json.Number `json:"amount_filled"`
	AmountCost   json.Number `json:"amount_cost"`
}

// Normalizer converts venue response shapes to canonical core types.
// All methods are pure; malformed input is reported explicitly instead
// of producing silently null canonical fields.
type Normalizer struct {
	name string
}

// NewNormalizer creates a Normalizer for the named venue.
func NewNormalizer(name string) *Normalizer {
	return &Normalizer{name: name}
}

// NormalizeMarkets converts venue market records one-to-one, in
// response order. The venue publishes a single decimals value, so
// price, cost, and amount precision all derive from it.
func (n *Normalizer) NormalizeMarkets(entries []json.RawMessage) ([]core.Market, error) {
	markets := make([]core.Market, 0, len(entries))
	for _, entry := range entries {
		var raw rawMarket
		if err := sonic.Unmarshal(entry, &raw); err != nil {
			return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("market record: %v", err))
		}
		if raw.Code == "" {
			return nil, core.NewMalformedResponseError(n.name, "market record missing code")
		}
		if raw.BaseCurrency.Data.Code == "" || raw.QuoteCurrency.Data.Code == "" {
			return nil, core.NewMalformedResponseError(n.name, "market record missing currency codes")
		}
		markets = append(markets, core.Market{
			ID:      raw.Code,
			Symbol:  raw.Code,
			Active:  raw.IsActive,
			Base:    raw.BaseCurrency.Data.Code,
			BaseID:  strings.ToLower(raw.BaseCurrency.Data.Code),
			Quote:   raw.QuoteCurrency.Data.Code,
			QuoteID: strings.ToLower(raw.QuoteCurrency.Data.Code),
			Precision: core.MarketPrecision{
				Price:  raw.Decimals,
				Cost:   raw.Decimals,
				Amount: raw.Decimals,
			},
			Info: entry,
		})
	}
	return markets, nil
}

// NormalizeCurrencies converts venue currency records one-to-one,
// lowercasing the venue code for the id. The venue has no deactivation
// signal, so active is always true.
func (n *Normalizer) NormalizeCurrencies(entries []json.RawMessage) ([]core.Currency, error) {
	currencies := make([]core.Currency, 0, len(entries))
	for _, entry := range entries {
		var raw rawCurrency
		if err := sonic.Unmarshal(entry, &raw); err != nil {
			return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("currency record: %v", err))
		}
		if raw.Code == "" {
			return nil, core.NewMalformedResponseError(n.name, "currency record missing code")
		}
		currencies = append(currencies, core.Currency{
			ID:        strings.ToLower(raw.Code),
			Code:      raw.Code,
			Name:      raw.Name,
			Active:    true,
			Precision: raw.Decimals,
			Info:      entry,
		})
	}
	return currencies, nil
}

// NormalizeOrderBook converts venue book snapshots one-to-one. The
// venue "sell" side maps to canonical "ask"; levels keep venue order
// and are not re-sorted or validated; timestamps keep the venue unit;
// the nonce is always nil.
func (n *Normalizer) NormalizeOrderBook(entries []json.RawMessage) ([]core.BookSnapshot, error) {
	snapshots := make([]core.BookSnapshot, 0, len(entries))
	for _, entry := range entries {
		var raw rawBook
		if err := sonic.Unmarshal(entry, &raw); err != nil {
			return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("book snapshot: %v", err))
		}
		buy, err := n.normalizeLevels(raw.Buy)
		if err != nil {
			return nil, err
		}
		ask, err := n.normalizeLevels(raw.Sell)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, core.BookSnapshot{
			Buy:       buy,
			Ask:       ask,
			Timestamp: raw.Timestamp,
		})
	}
	return snapshots, nil
}

func (n *Normalizer) normalizeLevels(levels [][]json.Number) ([]core.BookLevel, error) {
	result := make([]core.BookLevel, 0, len(levels))
	for _, level := range levels {
		if len(level) < 2 {
			return nil, core.NewMalformedResponseError(n.name,
				fmt.Sprintf("book level has %d elements, want 2", len(level)))
		}
		var lvl core.BookLevel
		if err := parseDecimal(&lvl.Price, level[0].String()); err != nil {
			return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("book level price: %v", err))
		}
		if err := parseDecimal(&lvl.Amount, level[1].String()); err != nil {
			return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("book level amount: %v", err))
		}
		result = append(result, lvl)
	}
	return result, nil
}

// NormalizeTicks passes venue trade-history records through untouched.
func (n *Normalizer) NormalizeTicks(entries []json.RawMessage) []core.RawTick {
	ticks := make([]core.RawTick, 0, len(entries))
	for _, entry := range entries {
		ticks = append(ticks, core.RawTick(entry))
	}
	return ticks
}

// NormalizeBalance joins the per-currency available/reserved/total
// buckets into the canonical free/used/total maps. A currency missing
// from a bucket gets an explicit zero there, so every code present in
// any bucket has entries in all three maps.
func (n *Normalizer) NormalizeBalance(entries []json.RawMessage, info json.RawMessage) (*core.Balance, error) {
	balance := &core.Balance{
		Free:   make(map[string]apd.Decimal),
		Used:   make(map[string]apd.Decimal),
		Total:  make(map[string]apd.Decimal),
		Assets: make(map[string]core.BalanceEntry),
		Info:   info,
	}

	for _, entry := range entries {
		var raw rawBalance
		if err := sonic.Unmarshal(entry, &raw); err != nil {
			return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("balance record: %v", err))
		}
		if raw.Available == nil && raw.Reserved == nil && raw.Total == nil {
			return nil, core.NewMalformedResponseError(n.name, "balance record has no buckets")
		}
		if err := n.setBucket(balance.Free, raw.Available); err != nil {
			return nil, err
		}
		if err := n.setBucket(balance.Used, raw.Reserved); err != nil {
			return nil, err
		}
		if err := n.setBucket(balance.Total, raw.Total); err != nil {
			return nil, err
		}
	}

	// Zero-fill so the three maps cover the same currency set.
	codes := make(map[string]struct{})
	for code := range balance.Free {
		codes[code] = struct{}{}
	}
	for code := range balance.Used {
		codes[code] = struct{}{}
	}
	for code := range balance.Total {
		codes[code] = struct{}{}
	}
	for code := range codes {
		if _, ok := balance.Free[code]; !ok {
			balance.Free[code] = apd.Decimal{}
		}
		if _, ok := balance.Used[code]; !ok {
			balance.Used[code] = apd.Decimal{}
		}
		if _, ok := balance.Total[code]; !ok {
			balance.Total[code] = apd.Decimal{}
		}
		balance.Assets[code] = core.BalanceEntry{
			Free:  balance.Free[code],
			Used:  balance.Used[code],
			Total: balance.Total[code],
		}
	}

	return balance, nil
}

func (n *Normalizer) setBucket(dest map[string]apd.Decimal, bucket *rawBucket) error {
	if bucket == nil || bucket.Currency == "" {
		return nil
	}
	var amount apd.Decimal
	if err := parseDecimal(&amount, bucket.Amount.String()); err != nil {
		return core.NewMalformedResponseError(n.name, fmt.Sprintf("balance amount for %s: %v", bucket.Currency, err))
	}
	dest[bucket.Currency] = amount
	return nil
}

// NormalizeOrder converts a single venue order record. Both canonical
// IDs carry the venue uuid, and timestamps are derived as truncated
// epoch seconds from the created/updated times.
func (n *Normalizer) NormalizeOrder(entry json.RawMessage) (*core.Order, error) {
	var raw rawOrder
	if err := sonic.Unmarshal(entry, &raw); err != nil {
		return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("order record: %v", err))
	}
	if raw.UUID == "" {
		return nil, core.NewMalformedResponseError(n.name, "order record missing uuid")
	}
	if raw.CreatedAt == "" {
		return nil, core.NewMalformedResponseError(n.name, "order record missing created_at")
	}

	created, err := parseEpochSeconds(raw.CreatedAt)
	if err != nil {
		return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("order created_at: %v", err))
	}

	side, err := parseSide(raw.Side)
	if err != nil {
		return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("order side: %v", err))
	}

	updatedAt := raw.UpdatedAt
	if updatedAt == "" {
		updatedAt = raw.UpdatedAtTyp
	}
	var updated int64
	if updatedAt != "" {
		updated, err = parseEpochSeconds(updatedAt)
		if err != nil {
			return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("order updated_at: %v", err))
		}
	}

	order := &core.Order{
		ID:                 raw.UUID,
		ClientOrderID:      raw.UUID,
		Datetime:           raw.CreatedAt,
		Timestamp:          created,
		LastTradeTimestamp: updated,
		Status:             raw.Status,
		Symbol:             raw.TradeMarket,
		Type:               raw.Type,
		TimeInForce:        raw.TimeInForce,
		Side:               side,
		Info:               entry,
	}

	if err := parseDecimal(&order.Amount, raw.Amount.String()); err != nil {
		return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("order amount: %v", err))
	}
	if err := parseDecimal(&order.Filled, raw.AmountFilled.String()); err != nil {
		return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("order amount_filled: %v", err))
	}
	if err := parseDecimal(&order.Cost, raw.AmountCost.String()); err != nil {
		return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("order amount_cost: %v", err))
	}

	return order, nil
}

// NormalizeOrders converts multiple venue order records in response order.
func (n *Normalizer) NormalizeOrders(entries []json.RawMessage) ([]core.Order, error) {
	orders := make([]core.Order, 0, len(entries))
	for _, entry := range entries {
		order, err := n.NormalizeOrder(entry)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// NormalizeOrderAck converts the venue's create-order response, which
// only guarantees the uuid; the raw record rides along in Info.
func (n *Normalizer) NormalizeOrderAck(entry json.RawMessage) (*core.Order, error) {
	var raw struct {
		UUID string `json:"uuid"`
	}
	if err := sonic.Unmarshal(entry, &raw); err != nil {
		return nil, core.NewMalformedResponseError(n.name, fmt.Sprintf("order ack: %v", err))
	}
	if raw.UUID == "" {
		return nil, core.NewMalformedResponseError(n.name, "order ack missing uuid")
	}
	return &core.Order{
		ID:            raw.UUID,
		ClientOrderID: raw.UUID,
		Info:          entry,
	}, nil
}

func parseDecimal(dest *apd.Decimal, s string) error {
	if s == "" {
		*dest = apd.Decimal{}
		return nil
	}
	_, _, err := apd.BaseContext.SetString(dest, s)
	if err != nil {
		return fmt.Errorf("set decimal from string: %w", err)
	}
	return nil
}

// parseEpochSeconds converts a venue RFC 3339 timestamp to truncated
// epoch seconds.
func parseEpochSeconds(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("parse time: %w", err)
	}
	return t.Unix(), nil
}

func parseSide(s string) (core.OrderSide, error) {
	switch strings.ToLower(s) {
	case "buy":
		return core.SideBuy, nil
	case "sell":
		return core.SideSell, nil
	default:
		return core.SideBuy, fmt.Errorf("unknown side %q", s)
	}
}
