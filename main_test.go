package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parfum/internal/cart"
	"parfum/internal/models"
	"parfum/internal/repositories"
	"parfum/internal/services"
	"parfum/pkg/sheets"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestOpenOrderArchive_SqliteInMemory(t *testing.T) {
	repo, err := openOrderArchive("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)

	order := &models.Order{ID: "ORD-MAIN1", CustomerName: "Ada", TotalPrice: 42, Status: "acknowledged"}
	require.NoError(t, repo.Create(order))

	got, err := repo.GetByID("ORD-MAIN1")
	require.NoError(t, err)
	assert.Equal(t, 42.0, got.TotalPrice)
}

func TestBuildApp_HealthAndRoutes(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer backend.Close()

	sheetsClient := sheets.NewClient(sheets.Config{BaseURL: backend.URL})
	catalogService := services.NewCatalogService(sheetsClient)
	orderService := services.NewOrderService(sheetsClient, repositories.NewMockOrderRepository(), nil)

	app := buildApp(catalogService, orderService, cart.NewManager())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])

	// The storefront stays up on the sample catalog when the backend is down.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, 6)

	// Catalog warm-up behaves the same way.
	loaded := catalogService.Load(context.Background())
	assert.Len(t, loaded, 6)
}
