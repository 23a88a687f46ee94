package litebit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradekit/pkg/core"
)

func TestSchemaForVersion(t *testing.T) {
	v1, err := SchemaForVersion("v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", v1.Version)

	v2, err := SchemaForVersion("v2")
	require.NoError(t, err)
	assert.Equal(t, "v2", v2.Version)

	_, err = SchemaForVersion("v3")
	assert.Error(t, err)
}

func TestSchemaV1DeclaresFullEndpointSet(t *testing.T) {
	schema := SchemaV1()

	assert.True(t, schema.HasEndpoint(core.Public, http.MethodGet, pathTradeMarket))
	assert.True(t, schema.HasEndpoint(core.Public, http.MethodGet, pathMarketBook))
	assert.True(t, schema.HasEndpoint(core.Public, http.MethodGet, pathMarketHistory))
	assert.True(t, schema.HasEndpoint(core.Public, http.MethodGet, pathCurrency))
	assert.True(t, schema.HasEndpoint(core.Private, http.MethodGet, pathBalance))
	assert.True(t, schema.HasEndpoint(core.Private, http.MethodGet, pathTradeOrder))
	assert.True(t, schema.HasEndpoint(core.Private, http.MethodGet, pathTradeOrderID))
	assert.True(t, schema.HasEndpoint(core.Private, http.MethodPost, pathTradeOrder))
	assert.True(t, schema.HasEndpoint(core.Private, http.MethodDelete, pathTradeOrderID))
}

func TestSchemaV2OmitsOrderReads(t *testing.T) {
	schema := SchemaV2()

	assert.False(t, schema.HasEndpoint(core.Private, http.MethodGet, pathTradeOrder))
	assert.False(t, schema.HasEndpoint(core.Private, http.MethodGet, pathTradeOrderID))

	// Write-side order endpoints remain.
	assert.True(t, schema.HasEndpoint(core.Private, http.MethodPost, pathTradeOrder))
	assert.True(t, schema.HasEndpoint(core.Private, http.MethodDelete, pathTradeOrderID))
}

func TestSchemaCapabilities(t *testing.T) {
	v1 := SchemaV1()
	v2 := SchemaV2()

	shared := []core.Operation{
		core.OpFetchMarkets,
		core.OpFetchCurrencies,
		core.OpFetchOrderBook,
		core.OpFetchTicker,
		core.OpFetchTickers,
		core.OpFetchBalance,
		core.OpCreateOrder,
		core.OpCancelOrder,
	}
	for _, op := range shared {
		assert.True(t, v1.Supports(op), "v1 %s", op)
		assert.True(t, v2.Supports(op), "v2 %s", op)
	}

	assert.True(t, v1.Supports(core.OpFetchOrder))
	assert.True(t, v1.Supports(core.OpFetchOrders))
	assert.False(t, v2.Supports(core.OpFetchOrder))
	assert.False(t, v2.Supports(core.OpFetchOrders))
}

func TestHasEndpointWrongVisibility(t *testing.T) {
	schema := SchemaV1()

	assert.False(t, schema.HasEndpoint(core.Private, http.MethodGet, pathTradeMarket))
	assert.False(t, schema.HasEndpoint(core.Public, http.MethodGet, pathBalance))
}
