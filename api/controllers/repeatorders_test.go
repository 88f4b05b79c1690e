package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/halmarket/halmarket-backend/internal/repeatorder"
	"github.com/halmarket/halmarket-backend/pkg/db/models"
	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
)

type stubRepeatOrderValidator struct {
	result *repeatorder.Result
	err    error
}

func (s *stubRepeatOrderValidator) Validate(_ context.Context, _ *models.OrderSnapshot, _ uuid.UUID, _ enums.CustomerType) (*repeatorder.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubRepeatOrderValidator) ValidateOrder(_ context.Context, _, _ uuid.UUID, _ enums.CustomerType) (*repeatorder.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestValidateRepeatOrder(t *testing.T) {
	orderID := uuid.New()
	regionID := uuid.New()

	makeRequest := func(stub *stubRepeatOrderValidator, payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/repeat-orders/validate", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		ValidateRepeatOrder(stub, testLogger()).ServeHTTP(rec, req)
		return rec
	}

	t.Run("success", func(t *testing.T) {
		stub := &stubRepeatOrderValidator{result: &repeatorder.Result{CanRepeat: true}}
		payload := fmt.Sprintf(`{"order_id":%q,"region_id":%q,"customer_type":"b2b"}`, orderID, regionID)
		rec := makeRequest(stub, payload)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var envelope struct {
			Data struct {
				CanRepeat bool `json:"can_repeat"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if !envelope.Data.CanRepeat {
			t.Fatal("expected can_repeat true")
		}
	})

	t.Run("missing order id", func(t *testing.T) {
		payload := fmt.Sprintf(`{"region_id":%q,"customer_type":"b2b"}`, regionID)
		if rec := makeRequest(&stubRepeatOrderValidator{}, payload); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		stub := &stubRepeatOrderValidator{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
		payload := fmt.Sprintf(`{"order_id":%q,"region_id":%q,"customer_type":"b2c"}`, orderID, regionID)
		if rec := makeRequest(stub, payload); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
