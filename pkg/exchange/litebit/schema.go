package litebit

import (
	"fmt"
	"net/http"

	"tradekit/pkg/core"
)

// DefaultBaseURL is the production API base URL.
const DefaultBaseURL = "https://api.litebit.nl"

// Path templates for the venue endpoints. Templates contain {name}
// placeholders substituted from parameters by the signer.
const (
	pathTradeMarket   = "trade-market"
	pathMarketBook    = "trade-market/{code}/book"
	pathMarketHistory = "trade-market/{code}/history"
	pathCurrency      = "currency"
	pathBalance       = "balance"
	pathTradeOrder    = "trade-order"
	pathTradeOrderID  = "trade-order/{uuid}"
)

// Schema is the static descriptor of one venue API version: base URL,
// version string, declared endpoints grouped by visibility and verb,
// and capability flags. It carries no behavior beyond lookups.
type Schema struct {
	Version      string
	BaseURL      string
	Endpoints    map[core.Visibility]map[string][]string
	Capabilities map[core.Operation]bool
}

// SchemaV1 returns the descriptor for API version v1, which declares
// the full endpoint set.
func SchemaV1() *Schema {
	return &Schema{
		Version: "v1",
		BaseURL: DefaultBaseURL,
		Endpoints: map[core.Visibility]map[string][]string{
			core.Public: {
				http.MethodGet: {
					pathTradeMarket,
					pathMarketBook,
					pathMarketHistory,
					pathCurrency,
				},
			},
			core.Private: {
				http.MethodGet: {
					pathBalance,
					pathTradeOrder,
					pathTradeOrderID,
				},
				http.MethodPost: {
					pathTradeOrder,
				},
				http.MethodDelete: {
					pathTradeOrderID,
				},
			},
		},
		Capabilities: map[core.Operation]bool{
			core.OpFetchMarkets:    true,
			core.OpFetchCurrencies: true,
			core.OpFetchOrderBook:  true,
			core.OpFetchTicker:     true,
			core.OpFetchTickers:    true,
			core.OpFetchBalance:    true,
			core.OpCreateOrder:     true,
			core.OpCancelOrder:     true,
			core.OpFetchOrder:      true,
			core.OpFetchOrders:     true,
		},
	}
}

// SchemaV2 returns the descriptor for API version v2. The v2 API does
// not declare the private order read endpoints, so FetchOrder and
// FetchOrders are unsupported under it.
func SchemaV2() *Schema {
	return &Schema{
		Version: "v2",
		BaseURL: DefaultBaseURL,
		Endpoints: map[core.Visibility]map[string][]string{
			core.Public: {
				http.MethodGet: {
					pathTradeMarket,
					pathMarketBook,
					pathMarketHistory,
					pathCurrency,
				},
			},
			core.Private: {
				http.MethodGet: {
					pathBalance,
				},
				http.MethodPost: {
					pathTradeOrder,
				},
				http.MethodDelete: {
					pathTradeOrderID,
				},
			},
		},
		Capabilities: map[core.Operation]bool{
			core.OpFetchMarkets:    true,
			core.OpFetchCurrencies: true,
			core.OpFetchOrderBook:  true,
			core.OpFetchTicker:     true,
			core.OpFetchTickers:    true,
			core.OpFetchBalance:    true,
			core.OpCreateOrder:     true,
			core.OpCancelOrder:     true,
			core.OpFetchOrder:      false,
			core.OpFetchOrders:     false,
		},
	}
}

// SchemaForVersion returns the descriptor matching the configured version.
func SchemaForVersion(version string) (*Schema, error) {
	switch version {
	case "v1":
		return SchemaV1(), nil
	case "v2":
		return SchemaV2(), nil
	default:
		return nil, fmt.Errorf("unknown schema version: %s", version)
	}
}

// Supports reports whether the schema declares the given operation.
func (s *Schema) Supports(op core.Operation) bool {
	return s.Capabilities[op]
}

// HasEndpoint reports whether the schema declares the given path
// template under the visibility class and HTTP verb.
func (s *Schema) HasEndpoint(visibility core.Visibility, method, template string) bool {
	verbs, ok := s.Endpoints[visibility]
	if !ok {
		return false
	}
	for _, t := range verbs[method] {
		if t == template {
			return true
		}
	}
	return false
}
