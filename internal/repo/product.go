package repo

import (
	"ProductKeeper/internal/model"
	"context"

	"gorm.io/gorm"
)

// ProductRepository хранилище товаров.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	// GetByID возвращает товар; withImages подгружает его изображения.
	GetByID(ctx context.Context, id string, withImages bool) (*model.Product, error)
	// List возвращает все товары вместе с изображениями, новые первыми.
	List(ctx context.Context) ([]model.Product, error)
	// Update применяет частичные изменения (ключи это имена колонок). Возвращает число затронутых строк.
	Update(ctx context.Context, id string, updates map[string]any) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Omit("Images").Create(p).Error
}

func (r *productRepo) GetByID(ctx context.Context, id string, withImages bool) (*model.Product, error) {
	q := r.db.WithContext(ctx)
	if withImages {
		q = q.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at") })
	}
	var p model.Product
	if err := q.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at") }).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) Update(ctx context.Context, id string, updates map[string]any) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(updates)
	return tx.RowsAffected, tx.Error
}

func (r *productRepo) Delete(ctx context.Context, id string) (int64, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	return tx.RowsAffected, tx.Error
}
