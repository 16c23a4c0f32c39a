package repo

import (
	"ProductKeeper/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrBlobNotFound — файла с такой ссылкой нет в хранилище.
var ErrBlobNotFound = errors.New("blob not found")

// BlobRepository минимальный контракт хранилища файлов изображений.
type BlobRepository interface {
	// CreateIfAbsent пытается создать запись. Если существует — ничего не делает.
	// Возвращает created=true если запись была создана в этой операции.
	CreateIfAbsent(ctx context.Context, ref string, data []byte) (created bool, err error)
	// Get возвращает содержимое или ErrBlobNotFound.
	Get(ctx context.Context, ref string) ([]byte, error)
	// Delete удаляет файл. Отсутствующий файл не считается ошибкой.
	Delete(ctx context.Context, ref string) error
}

type blobRepo struct {
	db *gorm.DB
}

// NewBlobRepository создаёт хранилище файлов в таблице blobs.
func NewBlobRepository(db *gorm.DB) BlobRepository {
	return &blobRepo{db: db}
}

// CreateIfAbsent создает Blob в БД, если его ещё нет.
func (r *blobRepo) CreateIfAbsent(ctx context.Context, ref string, data []byte) (bool, error) {
	b := &model.Blob{Ref: ref, Data: data}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ref"}},
		DoNothing: true,
	}).Create(b)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *blobRepo) Get(ctx context.Context, ref string) ([]byte, error) {
	var b model.Blob
	err := r.db.WithContext(ctx).Where("ref = ?", ref).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return b.Data, nil
}

func (r *blobRepo) Delete(ctx context.Context, ref string) error {
	return r.db.WithContext(ctx).Where("ref = ?", ref).Delete(&model.Blob{}).Error
}
