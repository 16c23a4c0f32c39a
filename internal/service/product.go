package service

import (
	"ProductKeeper/internal/apperr"
	"ProductKeeper/internal/model"
	"ProductKeeper/internal/repo"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrProductMissing = apperr.NotFound(apperr.CodeNotFound, "product not found")

// AttachmentCascade удаляет все изображения товара перед удалением самого товара.
type AttachmentCascade interface {
	DetachAll(ctx context.Context, productID string) error
}

// ProductInput поля товара при создании. Пустой Condition означает NEW.
type ProductInput struct {
	ProductName  string
	LotNumber    string
	TruckNumber  string
	Source       string
	UPC          string
	ASIN         *string
	Link         *string
	Condition    string
	Damaged      bool
	MissingItems bool
	WhatsMissing *string
	Notes        *string
	MixedID      *string
}

type fieldKind int

const (
	requiredString fieldKind = iota
	optionalString
	boolField
	conditionField
)

type mutableField struct {
	column string
	kind   fieldKind
}

// mutableFields белый список изменяемых полей: JSON-имя → колонка.
var mutableFields = map[string]mutableField{
	"productName":  {"product_name", requiredString},
	"lotNumber":    {"lot_number", requiredString},
	"truckNumber":  {"truck_number", requiredString},
	"source":       {"source", requiredString},
	"upc":          {"upc", requiredString},
	"asin":         {"asin", optionalString},
	"link":         {"link", optionalString},
	"condition":    {"condition", conditionField},
	"damaged":      {"damaged", boolField},
	"missingItems": {"missing_items", boolField},
	"whatsMissing": {"whats_missing", optionalString},
	"notes":        {"notes", optionalString},
	"mixedId":      {"mixed_id", optionalString},
}

var immutableFields = map[string]struct{}{
	"id":        {},
	"userId":    {},
	"ownerId":   {},
	"createdAt": {},
	"updatedAt": {},
	"images":    {},
}

// ProductService управляет жизненным циклом товара.
type ProductService struct {
	products repo.ProductRepository
	cascade  AttachmentCascade
	logger   *zap.SugaredLogger
}

func NewProductService(products repo.ProductRepository, cascade AttachmentCascade, logger *zap.SugaredLogger) *ProductService {
	return &ProductService{products: products, cascade: cascade, logger: logger}
}

// Create сохраняет новый товар владельца ownerID.
func (s *ProductService) Create(ctx context.Context, ownerID string, in ProductInput) (*model.Product, error) {
	cond := model.ConditionNew
	if strings.TrimSpace(in.Condition) != "" {
		c, ok := model.ParseCondition(in.Condition)
		if !ok {
			return nil, invalidCondition(in.Condition)
		}
		cond = c
	}
	if strings.TrimSpace(in.ProductName) == "" {
		return nil, apperr.Validation(apperr.CodeInvalidField, "productName is required")
	}

	p := &model.Product{
		ID:           uuid.NewString(),
		UserID:       ownerID,
		ProductName:  in.ProductName,
		LotNumber:    in.LotNumber,
		TruckNumber:  in.TruckNumber,
		Source:       in.Source,
		UPC:          in.UPC,
		ASIN:         in.ASIN,
		Link:         in.Link,
		Condition:    cond,
		Damaged:      in.Damaged,
		MissingItems: in.MissingItems,
		WhatsMissing: in.WhatsMissing,
		Notes:        in.Notes,
		MixedID:      in.MixedID,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, apperr.Collaborator("create product", err)
	}
	s.logger.Infow("product created", "product_id", p.ID, "owner_id", ownerID)
	return p, nil
}

// Get возвращает товар вместе с изображениями.
func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	if !validID(id) {
		return nil, ErrProductMissing
	}
	p, err := s.products.GetByID(ctx, id, true)
	if err != nil {
		return nil, notFoundOr(err, ErrProductMissing, "get product")
	}
	return p, nil
}

// List возвращает все товары с изображениями, новые первыми.
func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	list, err := s.products.List(ctx)
	if err != nil {
		return nil, apperr.Collaborator("list products", err)
	}
	if list == nil {
		list = []model.Product{}
	}
	return list, nil
}

// Update применяет частичные изменения. Ключи задаются JSON-именами полей;
// присутствующий ключ перезаписывает значение, в том числе null и пустой строкой.
// Значения — string, bool или nil (как после json.Unmarshal в map[string]any).
func (s *ProductService) Update(ctx context.Context, id string, patch map[string]any) (*model.Product, error) {
	if !validID(id) {
		return nil, ErrProductMissing
	}
	updates, err := columnsFromPatch(patch)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	n, err := s.products.Update(ctx, id, updates)
	if err != nil {
		return nil, apperr.Collaborator("update product", err)
	}
	if n == 0 {
		return nil, ErrProductMissing
	}
	s.logger.Infow("product updated", "product_id", id, "fields", sortedKeys(patch))
	return s.Get(ctx, id)
}

// Delete удаляет товар. Изображения удаляются до строки товара.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrProductMissing
	}
	if _, err := s.products.GetByID(ctx, id, false); err != nil {
		return notFoundOr(err, ErrProductMissing, "get product")
	}
	if err := s.cascade.DetachAll(ctx, id); err != nil {
		return err
	}
	n, err := s.products.Delete(ctx, id)
	if err != nil {
		return apperr.Collaborator("delete product", err)
	}
	if n == 0 {
		return ErrProductMissing
	}
	s.logger.Infow("product deleted", "product_id", id)
	return nil
}

// ConsistencyWarnings сообщает о противоречиях в полях товара. Они не блокируют сохранение.
func ConsistencyWarnings(p *model.Product) []string {
	var out []string
	if !p.MissingItems && p.WhatsMissing != nil && strings.TrimSpace(*p.WhatsMissing) != "" {
		out = append(out, "whatsMissing is set while missingItems is false")
	}
	return out
}

func columnsFromPatch(patch map[string]any) (map[string]any, error) {
	updates := make(map[string]any, len(patch))
	for _, key := range sortedKeys(patch) {
		val := patch[key]
		if _, ok := immutableFields[key]; ok {
			return nil, apperr.Validation(apperr.CodeImmutableField, fmt.Sprintf("field %q cannot be changed", key))
		}
		f, ok := mutableFields[key]
		if !ok {
			return nil, apperr.Validation(apperr.CodeUnknownField, fmt.Sprintf("unknown field %q", key))
		}
		v, err := coerce(key, f.kind, val)
		if err != nil {
			return nil, err
		}
		updates[f.column] = v
	}
	return updates, nil
}

func coerce(key string, kind fieldKind, val any) (any, error) {
	switch kind {
	case requiredString:
		if val == nil {
			return "", nil
		}
		if s, ok := val.(string); ok {
			return s, nil
		}
	case optionalString:
		if val == nil {
			return nil, nil
		}
		if s, ok := val.(string); ok {
			return s, nil
		}
	case boolField:
		if b, ok := val.(bool); ok {
			return b, nil
		}
	case conditionField:
		s, _ := val.(string)
		c, ok := model.ParseCondition(s)
		if !ok {
			return nil, invalidCondition(s)
		}
		return string(c), nil
	}
	return nil, apperr.Validation(apperr.CodeInvalidField, fmt.Sprintf("field %q has invalid type", key))
}

func invalidCondition(v string) error {
	return apperr.Validation(apperr.CodeInvalidEnum,
		fmt.Sprintf("condition %q must be one of NEW, USED, PARTS_ONLY", v))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
