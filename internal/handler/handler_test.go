package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"cinelight-api/internal/repository"
	"cinelight-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubQuotations embeds the interface so tests only implement what they call.
type stubQuotations struct {
	QuotationManager
	created   service.CreateQuotationInput
	addItem   func(id int64, in service.ItemInput) (*domain.QuotationItem, error)
	get       func(id int64) (*domain.Quotation, error)
	exportPDF func(id int64) (*service.Document, error)
}

func (s *stubQuotations) Create(_ context.Context, in service.CreateQuotationInput) (*domain.Quotation, error) {
	s.created = in
	return &domain.Quotation{
		ID:              1,
		QuotationNumber: "QL2024050001",
		ClientName:      *in.ClientName,
		IssueDate:       time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Subtotal:        decimal.NewFromInt(1575),
		Tax:             decimal.NewFromInt(10),
		Discount:        decimal.Zero,
		Total:           decimal.RequireFromString("1732.5"),
		Status:          domain.StatusDraft,
	}, nil
}

func (s *stubQuotations) Get(_ context.Context, id int64) (*domain.Quotation, error) {
	return s.get(id)
}

func (s *stubQuotations) AddItem(_ context.Context, id int64, in service.ItemInput) (*domain.QuotationItem, error) {
	return s.addItem(id, in)
}

func (s *stubQuotations) ExportPDF(_ context.Context, id int64) (*service.Document, error) {
	return s.exportPDF(id)
}

func serve(t *testing.T, register func(chi.Router), method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := chi.NewRouter()
	register(r)
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestCreateQuotation(t *testing.T) {
	stub := &stubQuotations{}
	h := QuotationHandler{Service: stub}

	rec, body := serve(t, h.RegisterRoutes, http.MethodPost, "/quotations", `{
		"clientName": "Northwind Films",
		"issueDate": "2024-05-02",
		"tax": 10,
		"sections": [{"name": "Day 1", "date": "2024-05-20", "items": [{"itemName": "SkyPanel", "quantity": 2, "pricePerDay": "250.00", "days": 3}]}],
		"items": [{"itemName": "Transport", "pricePerDay": 75, "type": "service"}]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["status"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "QL2024050001", data["quotationNumber"])
	assert.Equal(t, "1575.00", data["subtotal"])
	assert.Equal(t, "1732.50", data["total"])
	assert.Equal(t, "2024-05-02", data["issueDate"])

	require.Len(t, stub.created.Sections, 1)
	require.Len(t, stub.created.Sections[0].Items, 1)
	assert.True(t, stub.created.Sections[0].Items[0].PricePerDay.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 20, stub.created.Sections[0].Date.Day())
	require.Len(t, stub.created.Items, 1)
	assert.Equal(t, domain.ItemService, *stub.created.Items[0].Type)
}

func TestCreateQuotationValidation(t *testing.T) {
	h := QuotationHandler{Service: &stubQuotations{}}
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"bad email", `{"clientName": "A", "clientEmail": "nope"}`, "clientEmail"},
		{"nested item days", `{"clientName": "A", "items": [{"itemName": "x", "days": 0}]}`, "items[0].days"},
		{"unknown status", `{"clientName": "A", "status": "lost"}`, "status"},
		{"bad section date", `{"clientName": "A", "sections": [{"name": "S", "date": "20/05/2024"}]}`, "sections[0].date"},
		{"number longer than column", `{"clientName": "A", "quotationNumber": "QL2024030001-REVISED2"}`, "quotationNumber"},
		{"quantity beyond int4", `{"clientName": "A", "items": [{"itemName": "x", "quantity": 3000000000}]}`, "items[0].quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := serve(t, h.RegisterRoutes, http.MethodPost, "/quotations", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, body["status"])
			errs := body["errors"].([]any)
			require.NotEmpty(t, errs)
			assert.Equal(t, tc.field, errs[0].(map[string]any)["field"])
		})
	}
}

func TestInvalidPayload(t *testing.T) {
	h := QuotationHandler{Service: &stubQuotations{}}
	rec, body := serve(t, h.RegisterRoutes, http.MethodPost, "/quotations", `{"clientName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.EqualValues(t, http.StatusBadRequest, body["errorCode"])
}

func TestNotFoundStatusDependsOnRoute(t *testing.T) {
	stub := &stubQuotations{
		get: func(int64) (*domain.Quotation, error) { return nil, service.NotFoundError{Resource: "Quotation"} },
		addItem: func(int64, service.ItemInput) (*domain.QuotationItem, error) {
			return nil, service.NotFoundError{Resource: "Quotation"}
		},
	}
	h := QuotationHandler{Service: stub}

	rec, body := serve(t, h.RegisterRoutes, http.MethodGet, "/quotations/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Quotation not found", body["message"])

	rec, body = serve(t, h.RegisterRoutes, http.MethodPost, "/quotations/9/items", `{"itemName": "x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Quotation not found", body["message"])

	rec, _ = serve(t, h.RegisterRoutes, http.MethodGet, "/quotations/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItemPassesSection(t *testing.T) {
	var got service.ItemInput
	stub := &stubQuotations{addItem: func(id int64, in service.ItemInput) (*domain.QuotationItem, error) {
		got = in
		return &domain.QuotationItem{ID: 5, QuotationID: id, SectionID: in.SectionID, ItemName: *in.ItemName, Quantity: 1, PricePerDay: decimal.NewFromInt(40), Days: 1, Total: decimal.NewFromInt(40), Type: domain.ItemRental}, nil
	}}
	h := QuotationHandler{Service: stub}

	rec, body := serve(t, h.RegisterRoutes, http.MethodPost, "/quotations/3/items", `{"sectionId": 7, "itemName": "Dolly"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got.SectionID)
	assert.Equal(t, int64(7), *got.SectionID)
	data := body["data"].(map[string]any)
	assert.Equal(t, "40.00", data["total"])
	assert.EqualValues(t, 7, data["sectionId"])
}

func TestExportPDF(t *testing.T) {
	stub := &stubQuotations{exportPDF: func(int64) (*service.Document, error) {
		return &service.Document{Filename: "quotation-QL2024050001.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}, nil
	}}
	h := QuotationHandler{Service: stub}

	rec, _ := serve(t, h.RegisterRoutes, http.MethodGet, "/quotations/1/export/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="quotation-QL2024050001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}

func TestInternalErrorsHiddenInProduction(t *testing.T) {
	boom := &stubQuotations{get: func(int64) (*domain.Quotation, error) { return nil, errors.New("pool exhausted") }}

	rec, body := serve(t, QuotationHandler{Service: boom}.RegisterRoutes, http.MethodGet, "/quotations/1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "pool exhausted", body["message"])

	hidden := QuotationHandler{Service: boom, Errors: Errors{HideInternal: true}}
	_, body = serve(t, hidden.RegisterRoutes, http.MethodGet, "/quotations/1", "")
	assert.Equal(t, "Internal server error", body["message"])
}

type stubAuth struct{ err error }

func (s stubAuth) Login(_ context.Context, in service.LoginInput) (*service.AuthResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.AuthResult{
		AccessToken: "signed",
		User:        domain.User{ID: 1, Username: in.Username, PasswordHash: "$2a$10$secret", Role: domain.RoleAdmin, IsActive: true},
		ExpiresAt:   time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (s stubAuth) Me(context.Context, int64) (*domain.User, error) { return nil, s.err }

func TestLogin(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		body    string
		status  int
		message string
	}{
		{"success", nil, `{"username": "admin", "password": "admin"}`, http.StatusOK, "Login successful"},
		{"bad credentials", service.ErrInvalidCredentials, `{"username": "admin", "password": "x"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"deactivated", service.ErrAccountDisabled, `{"username": "old", "password": "x"}`, http.StatusUnauthorized, "Your account has been deactivated. Please contact administrator."},
		{"missing password", nil, `{"username": "admin"}`, http.StatusBadRequest, "Validation failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := AuthHandler{Service: stubAuth{err: tc.err}}
			rec, body := serve(t, h.RegisterRoutes, http.MethodPost, "/auth/login", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.message, body["message"])
			if tc.status == http.StatusOK {
				data := body["data"].(map[string]any)
				assert.Equal(t, "signed", data["token"])
				user := data["user"].(map[string]any)
				assert.NotContains(t, user, "password")
				assert.NotContains(t, user, "passwordHash")
			}
		})
	}
}

type stubEquipment struct {
	EquipmentManager
	filter repository.EquipmentFilter
	params pagination.Params
	delErr error
}

func (s *stubEquipment) List(_ context.Context, f repository.EquipmentFilter, p pagination.Params) (pagination.Page[domain.Equipment], error) {
	s.filter, s.params = f, p
	items := []domain.Equipment{{ID: 1, Name: "SkyPanel", DailyRentalPrice: decimal.NewFromInt(250), CategoryID: 2, CategoryName: "Lighting"}}
	return pagination.NewPage(items, 21, p.Normalize()), nil
}

func (s *stubEquipment) Delete(context.Context, int64) error { return s.delErr }

func TestEquipmentListFilters(t *testing.T) {
	stub := &stubEquipment{}
	h := EquipmentHandler{Service: stub}

	rec, body := serve(t, h.RegisterRoutes, http.MethodGet, "/equipment?page=2&limit=10&search=sky&minPrice=100&isActive=true&categoryId=2&sortBy=dailyRentalPrice&sortOrder=desc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.filter.MinPrice)
	assert.True(t, stub.filter.MinPrice.Equal(decimal.NewFromInt(100)))
	assert.Nil(t, stub.filter.MaxPrice)
	assert.Equal(t, int64(2), *stub.filter.CategoryID)
	assert.True(t, *stub.filter.IsActive)
	assert.Equal(t, "sky", stub.params.Search)

	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 21, meta["total"])
	assert.EqualValues(t, 3, meta["totalPages"])
	item := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "250.00", item["dailyRentalPrice"])
	assert.Equal(t, "Lighting", item["category"].(map[string]any)["name"])

	rec, _ = serve(t, h.RegisterRoutes, http.MethodGet, "/equipment?maxPrice=cheap", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEquipmentDeleteInUse(t *testing.T) {
	h := EquipmentHandler{Service: &stubEquipment{delErr: service.ErrInUse}}
	rec, body := serve(t, h.RegisterAdminRoutes, http.MethodDelete, "/equipment/4", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["status"])
}

type stubHealth struct{ err error }

func (s stubHealth) Health(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	rec, body := serve(t, HealthHandler{DB: stubHealth{}}.RegisterRoutes, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "up", body["database"])

	rec, body = serve(t, HealthHandler{DB: stubHealth{err: errors.New("down")}}.RegisterRoutes, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
}
