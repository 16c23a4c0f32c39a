package handlers

import (
	"ProductKeeper/internal/apperr"
	"ProductKeeper/internal/middleware"
	"ProductKeeper/internal/model"
	"ProductKeeper/internal/service"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler обрабатывает CRUD товаров.
type ProductHandler struct {
	ProductService *service.ProductService
	Logger         *zap.SugaredLogger
	resp           *responder
}

func NewProductHandler(productService *service.ProductService, logger *zap.SugaredLogger) *ProductHandler {
	return &ProductHandler{ProductService: productService, Logger: logger, resp: &responder{logger: logger}}
}

type productRequest struct {
	ProductName  string  `json:"productName" validate:"required,max=255"`
	LotNumber    string  `json:"lotNumber" validate:"max=128"`
	TruckNumber  string  `json:"truckNumber" validate:"max=128"`
	Source       string  `json:"source" validate:"max=255"`
	UPC          string  `json:"upc" validate:"max=64"`
	ASIN         *string `json:"asin" validate:"omitempty,max=32"`
	Link         *string `json:"link" validate:"omitempty,max=2048"`
	Condition    string  `json:"condition"`
	Damaged      bool    `json:"damaged"`
	MissingItems bool    `json:"missingItems"`
	WhatsMissing *string `json:"whatsMissing"`
	Notes        *string `json:"notes"`
	MixedID      *string `json:"mixedId"`
}

// productResponse добавляет к товару предупреждения о несогласованных полях.
type productResponse struct {
	*model.Product
	Warnings []string `json:"warnings,omitempty"`
}

func withWarnings(p *model.Product) productResponse {
	return productResponse{Product: p, Warnings: service.ConsistencyWarnings(p)}
}

// Create создаёт товар от имени текущего пользователя
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		h.resp.writeError(w, r, err)
		return
	}

	a, _ := middleware.AssertionFromContext(r.Context())
	p, err := h.ProductService.Create(r.Context(), a.PrincipalID, service.ProductInput{
		ProductName:  req.ProductName,
		LotNumber:    req.LotNumber,
		TruckNumber:  req.TruckNumber,
		Source:       req.Source,
		UPC:          req.UPC,
		ASIN:         req.ASIN,
		Link:         req.Link,
		Condition:    req.Condition,
		Damaged:      req.Damaged,
		MissingItems: req.MissingItems,
		WhatsMissing: req.WhatsMissing,
		Notes:        req.Notes,
		MixedID:      req.MixedID,
	})
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	h.resp.writeJSON(w, http.StatusCreated, withWarnings(p))
}

// List возвращает все товары с изображениями
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.ProductService.List(r.Context())
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	h.resp.writeJSON(w, http.StatusOK, list)
}

// Get возвращает товар с изображениями
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProductService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	h.resp.writeJSON(w, http.StatusOK, p)
}

// Update частично обновляет товар: меняются только присланные поля
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		if errors.Is(err, io.EOF) {
			h.resp.writeError(w, r, apperr.Validation(apperr.CodeInvalidField, "request body is empty"))
			return
		}
		h.resp.writeError(w, r, apperr.Validation(apperr.CodeInvalidField, "request body must be a JSON object"))
		return
	}
	p, err := h.ProductService.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	h.resp.writeJSON(w, http.StatusOK, withWarnings(p))
}

// Delete удаляет товар вместе с изображениями
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ProductService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
