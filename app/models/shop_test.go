package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey(t *testing.T) {
	key1, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.Len(t, key1, 64)

	key2, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key1, key2)
}

func TestHashAPIKey(t *testing.T) {
	hash := HashAPIKey("secret")
	assert.Len(t, hash, 64)
	// Deterministic, so lookups by hash work.
	assert.Equal(t, hash, HashAPIKey("secret"))
	assert.NotEqual(t, hash, HashAPIKey("secret2"))
}

func TestCreateShop(t *testing.T) {
	shop, apiKey, err := CreateShop("Test Shop", "test-shop.example.com", "")
	require.NoError(t, err)
	require.NotNil(t, shop)

	assert.Equal(t, PLAN_FREE, shop.Plan)
	assert.True(t, shop.SyncEnabled)
	assert.Equal(t, DefaultDailyTokenBudget, shop.DailyTokenBudget)
	assert.Len(t, apiKey, 64)
	assert.Equal(t, HashAPIKey(apiKey), shop.APIKeyHash)
}

func TestCreateShopValidation(t *testing.T) {
	_, _, err := CreateShop("", "test-shop.example.com", "")
	assert.Error(t, err)

	_, _, err = CreateShop("Test Shop", "x", "")
	assert.Error(t, err)

	_, _, err = CreateShop("Test Shop", "test-shop.example.com", "enterprise")
	assert.Error(t, err)
}
