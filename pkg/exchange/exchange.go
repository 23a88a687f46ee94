// Package exchange defines the venue-agnostic adapter surface consumers
// program against, together with a registry for adapter instances.
package exchange

import (
	"context"

	"github.com/cockroachdb/apd/v3"

	"tradekit/pkg/core"
)

// Exchange is the canonical adapter interface. Implementations translate
// venue responses into core types; consumers never see venue field names.
// Operations not declared by the active schema version fail with an
// unsupported-operation error; Has lets callers probe first.
type Exchange interface {
	Name() string
	Version() string

	// Has reports whether the active schema version declares the operation.
	Has(op core.Operation) bool

	FetchMarkets(ctx context.Context) ([]core.Market, error)
	FetchCurrencies(ctx context.Context) ([]core.Currency, error)
	FetchOrderBook(ctx context.Context, symbol string, opts ...Option) ([]core.BookSnapshot, error)
	FetchTicker(ctx context.Context, symbol string) ([]core.RawTick, error)
	FetchTickers(ctx context.Context, symbols []string) ([]core.RawTick, error)

	FetchBalance(ctx context.Context) (*core.Balance, error)
	CreateOrder(ctx context.Context, req *OrderRequest, extra core.Params) (*core.Order, error)
	CancelOrder(ctx context.Context, uuid string) error
	FetchOrder(ctx context.Context, uuid string) (*core.Order, error)
	FetchOrders(ctx context.Context) ([]core.Order, error)
}

// OrderRequest contains the four fields the venue requires to place an order.
type OrderRequest struct {
	// Market is the venue market code (e.g., "NLG-EUR").
	Market string
	// Side is the order direction.
	Side core.OrderSide
	// Amount is the quantity in base currency.
	Amount apd.Decimal
	// Rate is the limit price in quote currency.
	Rate apd.Decimal
}
