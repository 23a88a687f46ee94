package core

// Operation represents a logical endpoint exposed by the adapter.
type Operation int

// Operation constants define all adapter operations.
const (
	// OpFetchMarkets retrieves the list of tradable markets.
	OpFetchMarkets Operation = iota
	// OpFetchCurrencies retrieves the list of supported currencies.
	OpFetchCurrencies
	// OpFetchOrderBook retrieves order book snapshots for a market.
	OpFetchOrderBook
	// OpFetchTicker retrieves trade history for a single market.
	OpFetchTicker
	// OpFetchTickers retrieves trade history across markets.
	OpFetchTickers
	// OpFetchBalance retrieves account balances.
	OpFetchBalance
	// OpCreateOrder submits a new order.
	OpCreateOrder
	// OpCancelOrder cancels an existing order.
	OpCancelOrder
	// OpFetchOrder retrieves a single order by uuid.
	OpFetchOrder
	// OpFetchOrders retrieves all orders.
	OpFetchOrders
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return [...]string{
		"FETCH_MARKETS",
		"FETCH_CURRENCIES",
		"FETCH_ORDER_BOOK",
		"FETCH_TICKER",
		"FETCH_TICKERS",
		"FETCH_BALANCE",
		"CREATE_ORDER",
		"CANCEL_ORDER",
		"FETCH_ORDER",
		"FETCH_ORDERS",
	}[o]
}
