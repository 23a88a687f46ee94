// Package litebit implements the canonical adapter surface for the
// litebit venue REST API. Two incompatible API versions exist; the
// configured version selects a schema variant, and operations outside
// that variant fail with an unsupported-operation error.
package litebit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"tradekit/internal/keyring"
	"tradekit/internal/transport"
	"tradekit/pkg/core"
	"tradekit/pkg/exchange"
)

// Name is the venue identifier.
const Name = "litebit"

// Exchange is the litebit adapter. Safe for concurrent use.
type Exchange struct {
	config *core.Config
	schema *Schema
	signer *Signer
	client *transport.Client
	ring   *keyring.KeyRing
	norm   *Normalizer
	logger zerolog.Logger

	mu       sync.RWMutex
	markets  []core.Market
	bySymbol map[string]core.Market
}

var _ exchange.Exchange = (*Exchange)(nil)

// ExchangeOption customizes an adapter instance at construction time.
type ExchangeOption func(*Exchange)

// WithLogger replaces the default logger.
func WithLogger(logger zerolog.Logger) ExchangeOption {
	return func(e *Exchange) {
		e.logger = logger
	}
}

// WithKeyRing installs a token ring. When set, the ring's current
// token takes precedence over the config credentials for private
// requests, and authentication failures advance the ring.
func WithKeyRing(ring *keyring.KeyRing) ExchangeOption {
	return func(e *Exchange) {
		e.ring = ring
	}
}

// DefaultConfig returns an adapter configuration with the venue defaults.
func DefaultConfig() *core.Config {
	return core.DefaultConfig(Name)
}

// New creates a litebit adapter from the given configuration.
func New(config *core.Config, opts ...ExchangeOption) (*Exchange, error) {
	if config == nil {
		config = core.DefaultConfig(Name)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	schema, err := SchemaForVersion(config.Version)
	if err != nil {
		return nil, err
	}
	if config.BaseURL != "" {
		schema.BaseURL = config.BaseURL
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil || config.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Str("exchange", config.Exchange).
		Str("version", config.Version).
		Logger()

	e := &Exchange{
		config: config,
		schema: schema,
		signer: NewSigner(config.Exchange, schema),
		norm:   NewNormalizer(config.Exchange),
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.client = transport.NewClient(config, e.logger)
	return e, nil
}

// Name returns the venue identifier.
func (e *Exchange) Name() string {
	return e.config.Exchange
}

// Version returns the active schema version.
func (e *Exchange) Version() string {
	return e.schema.Version
}

// Has reports whether the active schema version declares the operation.
func (e *Exchange) Has(op core.Operation) bool {
	return e.schema.Supports(op)
}

// Close shuts down the underlying HTTP client.
func (e *Exchange) Close() error {
	return e.client.Close()
}

// FetchMarkets retrieves all markets and refreshes the symbol cache
// used for market resolution.
func (e *Exchange) FetchMarkets(ctx context.Context) ([]core.Market, error) {
	if err := e.ensureSupported(core.OpFetchMarkets); err != nil {
		return nil, err
	}
	data, err := e.call(ctx, core.Public, http.MethodGet, pathTradeMarket, nil)
	if err != nil {
		return nil, err
	}
	entries, err := e.decodeEntries(data)
	if err != nil {
		return nil, err
	}
	markets, err := e.norm.NormalizeMarkets(entries)
	if err != nil {
		return nil, err
	}

	bySymbol := make(map[string]core.Market, len(markets))
	for _, m := range markets {
		bySymbol[m.Symbol] = m
	}
	e.mu.Lock()
	e.markets = markets
	e.bySymbol = bySymbol
	e.mu.Unlock()

	return markets, nil
}

// FetchCurrencies retrieves all currencies known to the venue.
func (e *Exchange) FetchCurrencies(ctx context.Context) ([]core.Currency, error) {
	if err := e.ensureSupported(core.OpFetchCurrencies); err != nil {
		return nil, err
	}
	data, err := e.call(ctx, core.Public, http.MethodGet, pathCurrency, nil)
	if err != nil {
		return nil, err
	}
	entries, err := e.decodeEntries(data)
	if err != nil {
		return nil, err
	}
	return e.norm.NormalizeCurrencies(entries)
}

// FetchOrderBook retrieves the order book snapshots for one market.
func (e *Exchange) FetchOrderBook(ctx context.Context, symbol string, opts ...exchange.Option) ([]core.BookSnapshot, error) {
	if err := e.ensureSupported(core.OpFetchOrderBook); err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, core.NewMissingParameterError(e.Name(), "code")
	}
	params := core.Params{"code": symbol}
	if o := exchange.ApplyOptions(opts...); o.Limit > 0 {
		params["limit"] = o.Limit
	}
	data, err := e.call(ctx, core.Public, http.MethodGet, pathMarketBook, params)
	if err != nil {
		return nil, err
	}
	entries, err := e.decodeEntries(data)
	if err != nil {
		return nil, err
	}
	return e.norm.NormalizeOrderBook(entries)
}

// FetchTicker retrieves the recent trade history for one market. The
// symbol is resolved against the loaded market list; the records pass
// through in the venue's shape.
func (e *Exchange) FetchTicker(ctx context.Context, symbol string) ([]core.RawTick, error) {
	if err := e.ensureSupported(core.OpFetchTicker); err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, core.NewMissingParameterError(e.Name(), "code")
	}
	market, err := e.resolveMarket(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return e.fetchHistory(ctx, market.ID)
}

// FetchTickers retrieves trade history across markets, flattened into
// one sequence. The loaded market list drives iteration: every market
// is visited in market order, and when a symbol filter is supplied,
// markets outside it are skipped. A filter symbol matching no market
// matches nothing. The first venue failure aborts the whole call.
func (e *Exchange) FetchTickers(ctx context.Context, symbols []string) ([]core.RawTick, error) {
	if err := e.ensureSupported(core.OpFetchTickers); err != nil {
		return nil, err
	}
	markets, err := e.loadMarkets(ctx)
	if err != nil {
		return nil, err
	}

	var filter map[string]struct{}
	if len(symbols) > 0 {
		filter = make(map[string]struct{}, len(symbols))
		for _, s := range symbols {
			filter[s] = struct{}{}
		}
	}

	var ticks []core.RawTick
	for _, m := range markets {
		if filter != nil {
			if _, ok := filter[m.Symbol]; !ok {
				continue
			}
		}
		batch, err := e.fetchHistory(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		ticks = append(ticks, batch...)
	}
	return ticks, nil
}

// fetchHistory retrieves the trade history for one venue market code.
func (e *Exchange) fetchHistory(ctx context.Context, code string) ([]core.RawTick, error) {
	data, err := e.call(ctx, core.Public, http.MethodGet, pathMarketHistory, core.Params{"code": code})
	if err != nil {
		return nil, err
	}
	entries, err := e.decodeEntries(data)
	if err != nil {
		return nil, err
	}
	return e.norm.NormalizeTicks(entries), nil
}

// FetchBalance retrieves account balances joined into free/used/total
// views keyed by currency code.
func (e *Exchange) FetchBalance(ctx context.Context) (*core.Balance, error) {
	if err := e.ensureSupported(core.OpFetchBalance); err != nil {
		return nil, err
	}
	data, err := e.call(ctx, core.Private, http.MethodGet, pathBalance, nil)
	if err != nil {
		return nil, err
	}
	entries, err := e.decodeEntries(data)
	if err != nil {
		return nil, err
	}
	return e.norm.NormalizeBalance(entries, data)
}

// CreateOrder places a limit order. Extra parameters merge over the
// standard four fields, so a caller-supplied key wins on collision.
func (e *Exchange) CreateOrder(ctx context.Context, req *exchange.OrderRequest, extra core.Params) (*core.Order, error) {
	if err := e.ensureSupported(core.OpCreateOrder); err != nil {
		return nil, err
	}
	if req == nil || req.Market == "" {
		return nil, core.NewMissingParameterError(e.Name(), "trade-market")
	}

	params := core.Params{
		"trade-market": req.Market,
		"side":         req.Side.String(),
		"amount":       req.Amount.Text('f'),
		"rate":         req.Rate.Text('f'),
	}
	for k, v := range extra {
		params[k] = v
	}

	data, err := e.call(ctx, core.Private, http.MethodPost, pathTradeOrder, params)
	if err != nil {
		return nil, err
	}
	order, err := e.norm.NormalizeOrderAck(data)
	if err != nil {
		return nil, err
	}
	e.logger.Info().Str("uuid", order.ID).Str("market", req.Market).Msg("order placed")
	return order, nil
}

// CancelOrder cancels the order with the given venue uuid. The venue
// returns no order payload on cancellation.
func (e *Exchange) CancelOrder(ctx context.Context, uuid string) error {
	if err := e.ensureSupported(core.OpCancelOrder); err != nil {
		return err
	}
	if uuid == "" {
		return core.NewMissingParameterError(e.Name(), "uuid")
	}
	_, err := e.call(ctx, core.Private, http.MethodDelete, pathTradeOrderID, core.Params{"uuid": uuid})
	if err != nil {
		return err
	}
	e.logger.Info().Str("uuid", uuid).Msg("order cancelled")
	return nil
}

// FetchOrder retrieves one order by venue uuid. Unsupported under v2.
func (e *Exchange) FetchOrder(ctx context.Context, uuid string) (*core.Order, error) {
	if err := e.ensureSupported(core.OpFetchOrder); err != nil {
		return nil, err
	}
	if uuid == "" {
		return nil, core.NewMissingParameterError(e.Name(), "uuid")
	}
	data, err := e.call(ctx, core.Private, http.MethodGet, pathTradeOrderID, core.Params{"uuid": uuid})
	if err != nil {
		return nil, err
	}
	return e.norm.NormalizeOrder(data)
}

// FetchOrders retrieves all orders for the account. Unsupported under v2.
func (e *Exchange) FetchOrders(ctx context.Context) ([]core.Order, error) {
	if err := e.ensureSupported(core.OpFetchOrders); err != nil {
		return nil, err
	}
	data, err := e.call(ctx, core.Private, http.MethodGet, pathTradeOrder, nil)
	if err != nil {
		return nil, err
	}
	entries, err := e.decodeEntries(data)
	if err != nil {
		return nil, err
	}
	return e.norm.NormalizeOrders(entries)
}

// loadMarkets returns the cached market list, fetching it once on
// first use.
func (e *Exchange) loadMarkets(ctx context.Context) ([]core.Market, error) {
	e.mu.RLock()
	markets := e.markets
	e.mu.RUnlock()
	if markets != nil {
		return markets, nil
	}
	return e.FetchMarkets(ctx)
}

// resolveMarket looks a canonical symbol up in the loaded market list.
func (e *Exchange) resolveMarket(ctx context.Context, symbol string) (core.Market, error) {
	if _, err := e.loadMarkets(ctx); err != nil {
		return core.Market{}, err
	}
	e.mu.RLock()
	market, ok := e.bySymbol[symbol]
	e.mu.RUnlock()
	if !ok {
		return core.Market{}, core.NewAdapterError(e.Name(), core.ErrorTypeBadRequest, 0,
			fmt.Sprintf("unknown market: %s", symbol)).
			WithCode(core.ErrCodeBadRequest)
	}
	return market, nil
}

func (e *Exchange) ensureSupported(op core.Operation) error {
	if !e.schema.Supports(op) {
		return core.NewUnsupportedError(e.Name(), op, e.schema.Version)
	}
	return nil
}

// credentials resolves the bearer token for private requests: the key
// ring's current token when a ring is installed, the config
// credentials otherwise.
func (e *Exchange) credentials() *core.Credentials {
	if e.ring != nil {
		if tok := e.ring.Current(); tok != nil {
			return &core.Credentials{Token: tok.Value}
		}
	}
	return e.config.Credentials
}

// call runs one signed request through the transport and unwraps the
// response envelope.
func (e *Exchange) call(ctx context.Context, visibility core.Visibility, method, template string, params core.Params) (json.RawMessage, error) {
	req, err := e.signer.Sign(visibility, method, template, params, nil, e.credentials())
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		errType := transport.MapStatusCode(resp.StatusCode)
		if errType == core.ErrorTypeAuthentication && e.ring != nil {
			e.ring.OnError()
		}
		return nil, core.NewAdapterError(e.Name(), errType, resp.StatusCode, venueErrorMessage(resp.Body)).
			WithCode(errorCodeFor(errType))
	}

	if visibility == core.Private && e.ring != nil {
		e.ring.MarkUsed()
	}

	// The data field may be null, e.g. on cancellation acknowledgements;
	// each operation decodes the shape it expects.
	var env envelope
	if err := resp.Unmarshal(&env); err != nil {
		return nil, core.NewMalformedResponseError(e.Name(), fmt.Sprintf("response envelope: %v", err))
	}
	return env.Data, nil
}

// decodeEntries splits an envelope data array into its raw records.
func (e *Exchange) decodeEntries(data json.RawMessage) ([]json.RawMessage, error) {
	var entries []json.RawMessage
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return nil, core.NewMalformedResponseError(e.Name(), fmt.Sprintf("data array: %v", err))
	}
	return entries, nil
}

// venueErrorMessage extracts the venue's message field from an error
// body, falling back to the raw body.
func venueErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "request failed"
	}
	return msg
}

func errorCodeFor(t core.ErrorType) core.ErrorCode {
	switch t {
	case core.ErrorTypeServerError:
		return core.ErrCodeServerError
	case core.ErrorTypeRateLimit:
		return core.ErrCodeRateLimit
	case core.ErrorTypeAuthentication:
		return core.ErrCodeAuth
	case core.ErrorTypeNotFound:
		return core.ErrCodeNotFound
	case core.ErrorTypeBadRequest:
		return core.ErrCodeBadRequest
	default:
		return core.ErrCodeTransport
	}
}
