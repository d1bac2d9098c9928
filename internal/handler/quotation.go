package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"cinelight-api/internal/repository"
	"cinelight-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type QuotationManager interface {
	Create(ctx context.Context, in service.CreateQuotationInput) (*domain.Quotation, error)
	Get(ctx context.Context, id int64) (*domain.Quotation, error)
	List(ctx context.Context, f repository.QuotationFilter, p pagination.Params) (pagination.Page[domain.Quotation], error)
	Update(ctx context.Context, id int64, in service.QuotationInput) (*domain.Quotation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.QuotationStatus) (*domain.Quotation, error)
	Delete(ctx context.Context, id int64) error

	AddItem(ctx context.Context, quotationID int64, in service.ItemInput) (*domain.QuotationItem, error)
	UpdateItem(ctx context.Context, quotationID, itemID int64, in service.ItemInput) (*domain.QuotationItem, error)
	RemoveItem(ctx context.Context, quotationID, itemID int64) error
	AddSection(ctx context.Context, quotationID int64, in service.SectionInput) (*domain.QuotationSection, error)
	UpdateSection(ctx context.Context, quotationID, sectionID int64, in service.SectionInput) (*domain.QuotationSection, error)
	RemoveSection(ctx context.Context, quotationID, sectionID int64) error

	ExportExcel(ctx context.Context, id int64) (*service.Document, error)
	ExportPDF(ctx context.Context, id int64) (*service.Document, error)
}

type QuotationHandler struct {
	Service QuotationManager
	Errors  Errors
}

func (h QuotationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/quotations", h.list)
	r.Post("/quotations", h.create)
	r.Get("/quotations/{id}", h.get)
	r.Put("/quotations/{id}", h.update)
	r.Put("/quotations/{id}/status", h.updateStatus)

	r.Post("/quotations/{id}/items", h.addItem)
	r.Put("/quotations/{id}/items/{itemId}", h.updateItem)
	r.Delete("/quotations/{id}/items/{itemId}", h.removeItem)

	r.Post("/quotations/{id}/sections", h.addSection)
	r.Put("/quotations/{id}/sections/{sectionId}", h.updateSection)
	r.Delete("/quotations/{id}/sections/{sectionId}", h.removeSection)

	r.Get("/quotations/{id}/export/excel", h.exportExcel)
	r.Get("/quotations/{id}/export/pdf", h.exportPDF)
}

func (h QuotationHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/quotations/{id}", h.delete)
}

type itemRequest struct {
	SectionID   *int64           `json:"sectionId" validate:"omitempty,min=0"`
	EquipmentID *int64           `json:"equipmentId" validate:"omitempty,min=1"`
	ItemName    *string          `json:"itemName" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Quantity    *int             `json:"quantity" validate:"omitempty,min=0,max=2147483647"`
	Unit        *string          `json:"unit" validate:"omitempty,max=50"`
	PricePerDay *decimal.Decimal `json:"pricePerDay"`
	Days        *int             `json:"days" validate:"omitempty,min=1,max=2147483647"`
	Remarks     *string          `json:"remarks"`
	Type        *string          `json:"type" validate:"omitempty,oneof=rental service sale"`
	IsActive    *bool            `json:"isActive"`
}

type sectionRequest struct {
	Name        *string       `json:"name" validate:"omitempty,min=1,max=255"`
	Date        *string       `json:"date"`
	Description *string       `json:"description"`
	IsActive    *bool         `json:"isActive"`
	Items       []itemRequest `json:"items" validate:"omitempty,dive"`
}

// quotationRequest is shared by create and update; sections and items are
// only read on create.
type quotationRequest struct {
	QuotationNumber    *string          `json:"quotationNumber" validate:"omitempty,min=1,max=20"`
	ClientName         *string          `json:"clientName" validate:"omitempty,min=1,max=255"`
	ClientEmail        *string          `json:"clientEmail" validate:"omitempty,email"`
	ClientPhone        *string          `json:"clientPhone" validate:"omitempty,max=50"`
	ClientAddress      *string          `json:"clientAddress"`
	ProjectName        *string          `json:"projectName" validate:"omitempty,max=255"`
	ProjectDescription *string          `json:"projectDescription"`
	IssueDate          *string          `json:"issueDate"`
	ValidUntil         *string          `json:"validUntil"`
	Tax                *decimal.Decimal `json:"tax"`
	Discount           *decimal.Decimal `json:"discount"`
	Status             *string          `json:"status" validate:"omitempty,oneof=draft sent approved rejected converted_to_do converted_to_invoice"`
	Notes              *string          `json:"notes"`
	Terms              *string          `json:"terms"`
	Sections           []sectionRequest `json:"sections" validate:"omitempty,dive"`
	Items              []itemRequest    `json:"items" validate:"omitempty,dive"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent approved rejected converted_to_do converted_to_invoice"`
}

func (req quotationRequest) input() (service.QuotationInput, []fieldError) {
	var errs []fieldError
	issue, err := optionalDate(req.IssueDate)
	if err != nil {
		errs = append(errs, fieldError{Field: "issueDate", Message: "must be a date (YYYY-MM-DD)"})
	}
	valid, err := optionalDate(req.ValidUntil)
	if err != nil {
		errs = append(errs, fieldError{Field: "validUntil", Message: "must be a date (YYYY-MM-DD)"})
	}
	in := service.QuotationInput{
		QuotationNumber:    req.QuotationNumber,
		ClientName:         req.ClientName,
		ClientEmail:        req.ClientEmail,
		ClientPhone:        req.ClientPhone,
		ClientAddress:      req.ClientAddress,
		ProjectName:        req.ProjectName,
		ProjectDescription: req.ProjectDescription,
		IssueDate:          issue,
		ValidUntil:         valid,
		Tax:                req.Tax,
		Discount:           req.Discount,
		Notes:              req.Notes,
		Terms:              req.Terms,
	}
	if req.Status != nil {
		st := domain.QuotationStatus(*req.Status)
		in.Status = &st
	}
	return in, errs
}

func (req sectionRequest) input(prefix string) (service.SectionInput, []fieldError) {
	var errs []fieldError
	date, err := optionalDate(req.Date)
	if err != nil {
		errs = append(errs, fieldError{Field: prefix + "date", Message: "must be a date (YYYY-MM-DD)"})
	}
	in := service.SectionInput{
		Name:        req.Name,
		Date:        date,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, it.input())
	}
	return in, errs
}

func (req itemRequest) input() service.ItemInput {
	in := service.ItemInput{
		SectionID:   req.SectionID,
		EquipmentID: req.EquipmentID,
		ItemName:    req.ItemName,
		Description: req.Description,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		PricePerDay: req.PricePerDay,
		Days:        req.Days,
		Remarks:     req.Remarks,
		IsActive:    req.IsActive,
	}
	if req.Type != nil {
		t := domain.ItemType(*req.Type)
		in.Type = &t
	}
	return in
}

func optionalDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	return parseDate(*v)
}

func (h QuotationHandler) list(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateQuery(r, "fromDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fromDate")
		return
	}
	to, err := parseDateQuery(r, "toDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid toDate")
		return
	}
	if from != nil && to != nil && from.After(*to) {
		writeError(w, http.StatusBadRequest, "fromDate must be before toDate")
		return
	}
	page, err := h.Service.List(r.Context(), repository.QuotationFilter{
		Status:   r.URL.Query().Get("status"),
		FromDate: from,
		ToDate:   to,
	}, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writePage(w, "Quotations retrieved", mapSlice(page.Items, quotationView), page.Meta)
}

func (h QuotationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req quotationRequest
	if !decode(w, r, &req) {
		return
	}
	header, errs := req.input()
	in := service.CreateQuotationInput{QuotationInput: header}
	for i, s := range req.Sections {
		sec, secErrs := s.input(fmt.Sprintf("sections[%d].", i))
		errs = append(errs, secErrs...)
		in.Sections = append(in.Sections, sec)
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, it.input())
	}
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	q, err := h.Service.Create(r.Context(), in)
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, "Quotation created", quotationView(*q))
}

func (h QuotationHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Errors.Write(w, r, err, "Quotation")
		return
	}
	writeJSON(w, http.StatusOK, "Quotation retrieved", quotationView(*q))
}

func (h QuotationHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req quotationRequest
	if !decode(w, r, &req) {
		return
	}
	in, errs := req.input()
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	q, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		h.Errors.Write(w, r, err, "Quotation")
		return
	}
	writeJSON(w, http.StatusOK, "Quotation updated", quotationView(*q))
}

func (h QuotationHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	q, err := h.Service.UpdateStatus(r.Context(), id, domain.QuotationStatus(req.Status))
	if err != nil {
		h.Errors.Write(w, r, err, "Quotation")
		return
	}
	writeJSON(w, http.StatusOK, "Quotation status updated", quotationView(*q))
}

func (h QuotationHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Errors.Write(w, r, err, "Quotation")
		return
	}
	writeJSON(w, http.StatusOK, "Quotation deleted", nil)
}

// Nested routes report every missing reference, the quotation included, as 400.

func (h QuotationHandler) addItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req itemRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.Service.AddItem(r.Context(), id, req.input())
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, "Item added", itemView(*it))
}

func (h QuotationHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	var req itemRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.Service.UpdateItem(r.Context(), id, itemID, req.input())
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, "Item updated", itemView(*it))
}

func (h QuotationHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	if err := h.Service.RemoveItem(r.Context(), id, itemID); err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, "Item removed", nil)
}

func (h QuotationHandler) addSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req sectionRequest
	if !decode(w, r, &req) {
		return
	}
	in, errs := req.input("")
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	s, err := h.Service.AddSection(r.Context(), id, in)
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, "Section added", sectionView(*s))
}

func (h QuotationHandler) updateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sectionID, ok := pathID(w, r, "sectionId")
	if !ok {
		return
	}
	var req sectionRequest
	if !decode(w, r, &req) {
		return
	}
	in, errs := req.input("")
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	s, err := h.Service.UpdateSection(r.Context(), id, sectionID, in)
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, "Section updated", sectionView(*s))
}

func (h QuotationHandler) removeSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sectionID, ok := pathID(w, r, "sectionId")
	if !ok {
		return
	}
	if err := h.Service.RemoveSection(r.Context(), id, sectionID); err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, "Section removed", nil)
}

func (h QuotationHandler) exportExcel(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.Service.ExportExcel)
}

func (h QuotationHandler) exportPDF(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.Service.ExportPDF)
}

func (h QuotationHandler) export(w http.ResponseWriter, r *http.Request, render func(context.Context, int64) (*service.Document, error)) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	doc, err := render(r.Context(), id)
	if err != nil {
		h.Errors.Write(w, r, err, "Quotation")
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	_, _ = w.Write(doc.Data)
}
