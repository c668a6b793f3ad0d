package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/adapter/http/fiber/middleware"
	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/service/tariff"
)

func newBillApp(t *testing.T) *fiber.App {
	t.Helper()

	log := zap.NewNop()
	tariffService, err := tariff.NewService(nil, log)
	if err != nil {
		t.Fatalf("expected default tariff config to validate, got %v", err)
	}

	handler := NewAnalyticsHandler(nil, tariffService, log)
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	app.Get("/api/v1/analytics/bill", handler.Bill)
	return app
}

func TestAnalyticsHandler_Bill(t *testing.T) {
	// Arrange
	app := newBillApp(t)

	// Act
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/analytics/bill?units=150", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	// Assert
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var bill domain.BillResult
	if err := json.NewDecoder(resp.Body).Decode(&bill); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if bill.Units != 150 {
		t.Errorf("expected units 150, got %v", bill.Units)
	}
	// 100 free units plus 50 units at 2.35
	if bill.Total != 117.50 {
		t.Errorf("expected total 117.50, got %v", bill.Total)
	}
	if len(bill.Breakup) != 2 {
		t.Errorf("expected 2 breakup rows, got %d", len(bill.Breakup))
	}
}

func TestAnalyticsHandler_Bill_MissingUnits(t *testing.T) {
	// Arrange
	app := newBillApp(t)

	// Act
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/analytics/bill", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	// Assert
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Field != "units" {
		t.Errorf("expected field units, got %q", body.Field)
	}
}

func TestAnalyticsHandler_Bill_NonNumericUnits(t *testing.T) {
	// Arrange
	app := newBillApp(t)

	// Act
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/analytics/bill?units=abc", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	// Assert
	if resp.StatusCode != fiber.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status 400, got %d: %s", resp.StatusCode, body)
	}
}

func TestAnalyticsHandler_Bill_NegativeUnits(t *testing.T) {
	// Arrange
	app := newBillApp(t)

	// Act
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/analytics/bill?units=-5", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	// Assert
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}
