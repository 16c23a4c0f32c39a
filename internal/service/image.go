package service

import (
	"ProductKeeper/internal/apperr"
	"ProductKeeper/internal/model"
	"ProductKeeper/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxImageBytes потолок размера изображения по умолчанию.
const DefaultMaxImageBytes int64 = 5 * 1024 * 1024

var (
	ErrImageNotFound   = apperr.NotFound(apperr.CodeNotFound, "image not found")
	ErrProductNotFound = apperr.NotFound(apperr.CodeProductNotFound, "product not found")
	ErrDamageFlagUnset = apperr.Precondition("damage flag not set")
)

// ImagePolicy — допустимые типы, размер и категории изображений.
type ImagePolicy struct {
	AllowedMimeTypes []string
	MaxSizeBytes     int64
	Categories       []model.Category
}

// DefaultImagePolicy: jpeg/png/webp, 5 MiB, GENERAL и две категории повреждений.
func DefaultImagePolicy() ImagePolicy {
	return ImagePolicy{
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp"},
		MaxSizeBytes:     DefaultMaxImageBytes,
		Categories:       []model.Category{model.CategoryGeneral, model.CategoryDamagePrimary, model.CategoryDamageSecondary},
	}
}

func (p ImagePolicy) allowsMime(mime string) bool {
	for _, m := range p.AllowedMimeTypes {
		if strings.EqualFold(m, mime) {
			return true
		}
	}
	return false
}

func (p ImagePolicy) allowsCategory(c model.Category) bool {
	for _, known := range p.Categories {
		if known == c {
			return true
		}
	}
	return false
}

// ImageMeta метаданные входящего файла.
type ImageMeta struct {
	FileName  string
	MimeType  string
	SizeBytes int64
}

// AttachRequest запрос на прикрепление изображения к товару.
type AttachRequest struct {
	ProductID string
	Category  string
	Data      []byte
	Meta      ImageMeta
	IsVisible bool
}

// ImageService управляет жизненным циклом изображений товара.
type ImageService struct {
	products repo.ProductRepository
	images   repo.ImageRepository
	blobs    repo.BlobRepository
	recon    repo.ReconciliationLog
	policy   ImagePolicy
	logger   *zap.SugaredLogger
}

func NewImageService(
	products repo.ProductRepository,
	images repo.ImageRepository,
	blobs repo.BlobRepository,
	recon repo.ReconciliationLog,
	policy ImagePolicy,
	logger *zap.SugaredLogger,
) *ImageService {
	defaults := DefaultImagePolicy()
	if policy.MaxSizeBytes <= 0 {
		policy.MaxSizeBytes = defaults.MaxSizeBytes
	}
	if len(policy.AllowedMimeTypes) == 0 {
		policy.AllowedMimeTypes = defaults.AllowedMimeTypes
	}
	if len(policy.Categories) == 0 {
		policy.Categories = defaults.Categories
	}
	return &ImageService{
		products: products,
		images:   images,
		blobs:    blobs,
		recon:    recon,
		policy:   policy,
		logger:   logger,
	}
}

// Policy возвращает действующую политику вложений.
func (s *ImageService) Policy() ImagePolicy { return s.policy }

// ValidateIncoming проверяет тип и размер файла. Побочных эффектов нет.
func (s *ImageService) ValidateIncoming(meta ImageMeta) error {
	if !s.policy.allowsMime(baseMime(meta.MimeType)) {
		return apperr.Validation(apperr.CodeUnsupportedType,
			fmt.Sprintf("only %s images are allowed", strings.Join(s.policy.AllowedMimeTypes, ", ")))
	}
	if meta.SizeBytes > s.policy.MaxSizeBytes {
		return apperr.Validation(apperr.CodeTooLarge,
			fmt.Sprintf("file too large, max size is %d bytes", s.policy.MaxSizeBytes))
	}
	return nil
}

// Attach сохраняет файл и строку метаданных. Либо видны оба, либо ни одного.
func (s *ImageService) Attach(ctx context.Context, req AttachRequest) (*model.Image, error) {
	meta := req.Meta
	meta.MimeType = baseMime(meta.MimeType)
	// размер берём из фактического содержимого, а не из заявленного
	meta.SizeBytes = int64(len(req.Data))
	if err := s.ValidateIncoming(meta); err != nil {
		return nil, err
	}
	category := model.NormalizeCategory(req.Category)
	if category == "" {
		category = model.CategoryGeneral
	}
	if !s.policy.allowsCategory(category) {
		return nil, apperr.Validation(apperr.CodeInvalidEnum, fmt.Sprintf("unknown image category %q", req.Category))
	}

	if !validID(req.ProductID) {
		return nil, ErrProductNotFound
	}
	product, err := s.products.GetByID(ctx, req.ProductID, false)
	if err != nil {
		return nil, notFoundOr(err, ErrProductNotFound, "get product")
	}
	if category.IsDamage() && !product.Damaged {
		return nil, ErrDamageFlagUnset
	}

	img := &model.Image{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		Category:  category,
		BlobRef:   newBlobRef(meta.MimeType),
		FileName:  meta.FileName,
		MimeType:  meta.MimeType,
		SizeBytes: meta.SizeBytes,
		IsVisible: req.IsVisible,
	}

	created, err := s.blobs.CreateIfAbsent(ctx, img.BlobRef, req.Data)
	if err != nil {
		return nil, apperr.Collaborator("store blob", err)
	}
	if !created {
		return nil, apperr.Collaborator("store blob", fmt.Errorf("blob reference %s already exists", img.BlobRef))
	}

	if err := s.images.Create(ctx, img); err != nil {
		// откат: без строки метаданных файл никому не виден
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), img.BlobRef); delErr != nil {
			s.reconcile(ctx, model.ReconcileOrphanBlob, img, delErr)
		}
		return nil, apperr.Collaborator("create image metadata", err)
	}

	s.logger.Infow("image attached",
		"image_id", img.ID,
		"product_id", img.ProductID,
		"category", img.Category,
		"size", img.SizeBytes,
	)
	return img, nil
}

// Detach удаляет строку метаданных, затем файл. Сбой удаления файла
// не возвращается вызывающему, а попадает в журнал сверки.
func (s *ImageService) Detach(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrImageNotFound
	}
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, ErrImageNotFound, "get image")
	}
	n, err := s.images.Delete(ctx, id)
	if err != nil {
		return apperr.Collaborator("delete image metadata", err)
	}
	if n == 0 {
		// параллельный Detach успел раньше
		return ErrImageNotFound
	}
	s.removeBlob(ctx, img)
	return nil
}

// DetachAll удаляет все изображения товара (каскад при удалении товара).
func (s *ImageService) DetachAll(ctx context.Context, productID string) error {
	if !validID(productID) {
		return nil
	}
	deleted, err := s.images.DeleteByProduct(ctx, productID)
	if err != nil {
		return apperr.Collaborator("delete product images", err)
	}
	for i := range deleted {
		s.removeBlob(ctx, &deleted[i])
	}
	return nil
}

// ListForProduct возвращает все изображения товара, включая скрытые.
func (s *ImageService) ListForProduct(ctx context.Context, productID string) ([]model.Image, error) {
	if !validID(productID) {
		return []model.Image{}, nil
	}
	list, err := s.images.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apperr.Collaborator("list images", err)
	}
	return list, nil
}

// Open возвращает метаданные и содержимое файла изображения.
func (s *ImageService) Open(ctx context.Context, id string) (*model.Image, []byte, error) {
	if !validID(id) {
		return nil, nil, ErrImageNotFound
	}
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, ErrImageNotFound, "get image")
	}
	data, err := s.blobs.Get(ctx, img.BlobRef)
	if errors.Is(err, repo.ErrBlobNotFound) {
		s.logger.Errorw("image blob missing", "image_id", img.ID, "blob_ref", img.BlobRef)
		return nil, nil, ErrImageNotFound
	}
	if err != nil {
		return nil, nil, apperr.Collaborator("read blob", err)
	}
	return img, data, nil
}

// Reconciliation возвращает последние записи журнала сверки.
func (s *ImageService) Reconciliation(ctx context.Context, limit int) ([]model.ReconciliationEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	events, err := s.recon.List(ctx, limit)
	if err != nil {
		return nil, apperr.Collaborator("list reconciliation events", err)
	}
	return events, nil
}

func (s *ImageService) removeBlob(ctx context.Context, img *model.Image) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), img.BlobRef); err != nil {
		s.reconcile(ctx, model.ReconcileDanglingBlob, img, err)
	}
}

func (s *ImageService) reconcile(ctx context.Context, kind model.ReconciliationKind, img *model.Image, cause error) {
	ev := &model.ReconciliationEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		ImageID:   img.ID,
		ProductID: img.ProductID,
		BlobRef:   img.BlobRef,
		Reason:    cause.Error(),
		CreatedAt: time.Now().UTC(),
	}
	s.logger.Errorw("blob/metadata divergence",
		"kind", kind,
		"image_id", img.ID,
		"product_id", img.ProductID,
		"blob_ref", img.BlobRef,
		"error", cause,
	)
	if err := s.recon.Record(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.Errorw("failed to record reconciliation event",
			"event_id", ev.ID,
			"blob_ref", ev.BlobRef,
			"error", err,
		)
	}
}

func newBlobRef(mime string) string {
	ext := ""
	if m := mimetype.Lookup(mime); m != nil {
		ext = m.Extension()
	}
	return uuid.NewString() + ext
}

func baseMime(s string) string {
	s, _, _ = strings.Cut(s, ";")
	return strings.ToLower(strings.TrimSpace(s))
}
