package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
)

func parsePathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": param})
	}
	value, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a uuid").WithDetails(map[string]any{"field": param})
	}
	return value, nil
}

func queryCustomerType(r *http.Request) (enums.CustomerType, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("customer_type"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "customer_type is required").WithDetails(map[string]any{"field": "customer_type"})
	}
	customerType, err := enums.ParseCustomerType(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer type")
	}
	return customerType, nil
}
