package repo

import (
	"ProductKeeper/internal/model"
	"context"

	"gorm.io/gorm"
)

// ImageRepository хранилище метаданных изображений.
type ImageRepository interface {
	Create(ctx context.Context, img *model.Image) error
	GetByID(ctx context.Context, id string) (*model.Image, error)
	// ListByProduct возвращает все изображения товара, включая скрытые.
	ListByProduct(ctx context.Context, productID string) ([]model.Image, error)
	// Delete удаляет строку; 0 затронутых строк означает, что её уже нет.
	Delete(ctx context.Context, id string) (int64, error)
	// DeleteByProduct удаляет строки изображений товара и возвращает удалённые.
	DeleteByProduct(ctx context.Context, productID string) ([]model.Image, error)
}

type imageRepo struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepo{db: db}
}

func (r *imageRepo) Create(ctx context.Context, img *model.Image) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *imageRepo) GetByID(ctx context.Context, id string) (*model.Image, error) {
	var img model.Image
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *imageRepo) ListByProduct(ctx context.Context, productID string) ([]model.Image, error) {
	out := []model.Image{}
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("uploaded_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *imageRepo) Delete(ctx context.Context, id string) (int64, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Image{})
	return tx.RowsAffected, tx.Error
}

func (r *imageRepo) DeleteByProduct(ctx context.Context, productID string) ([]model.Image, error) {
	var deleted []model.Image
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Find(&deleted).Error; err != nil {
			return err
		}
		if len(deleted) == 0 {
			return nil
		}
		ids := make([]string, 0, len(deleted))
		for _, img := range deleted {
			ids = append(ids, img.ID)
		}
		// удаляем только прочитанные строки: их файлы затем удаляет сервис
		return tx.Where("id IN ?", ids).Delete(&model.Image{}).Error
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
