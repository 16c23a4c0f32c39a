package service

import (
	"ProductKeeper/internal/model"
	"ProductKeeper/internal/repo"
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testEnv — сервисы поверх отдельной in-memory SQLite.
type testEnv struct {
	db       *gorm.DB
	products repo.ProductRepository
	images   repo.ImageRepository
	blobs    repo.BlobRepository
	recon    repo.ReconciliationLog
	imgSvc   *ImageService
	prodSvc  *ProductService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// newTestEnv собирает сервисы; blobs == nil означает хранилище в БД.
func newTestEnv(t *testing.T, blobs repo.BlobRepository) *testEnv {
	t.Helper()
	db := newTestDB(t)
	if blobs == nil {
		blobs = repo.NewBlobRepository(db)
	}
	env := &testEnv{
		db:       db,
		products: repo.NewProductRepository(db),
		images:   repo.NewImageRepository(db),
		blobs:    blobs,
		recon:    repo.NewReconciliationLog(db),
	}
	logger := zap.NewNop().Sugar()
	env.imgSvc = NewImageService(env.products, env.images, env.blobs, env.recon, DefaultImagePolicy(), logger)
	env.prodSvc = NewProductService(env.products, env.imgSvc, logger)
	return env
}

func (e *testEnv) createProduct(t *testing.T, damaged bool) *model.Product {
	t.Helper()
	p, err := e.prodSvc.Create(context.Background(), "owner-1", ProductInput{
		ProductName: "Blender",
		LotNumber:   "L-1",
		TruckNumber: "T-9",
		Source:      "auction",
		UPC:         "0123456789",
		Damaged:     damaged,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) attach(t *testing.T, productID string, category string) *model.Image {
	t.Helper()
	img, err := e.imgSvc.Attach(context.Background(), AttachRequest{
		ProductID: productID,
		Category:  category,
		Data:      jpegBytes(1024),
		Meta:      ImageMeta{FileName: "photo.jpg", MimeType: "image/jpeg"},
		IsVisible: true,
	})
	require.NoError(t, err)
	return img
}

// jpegBytes возвращает n байт с JPEG-сигнатурой.
func jpegBytes(n int) []byte {
	b := bytes.Repeat([]byte{0x00}, n)
	copy(b, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return b
}

func strptr(s string) *string { return &s }

// мок для repo.BlobRepository: сбои хранилища файлов
type mockBlobRepo struct{ mock.Mock }

func (m *mockBlobRepo) CreateIfAbsent(ctx context.Context, ref string, data []byte) (bool, error) {
	args := m.Called(ctx, ref, data)
	return args.Bool(0), args.Error(1)
}

func (m *mockBlobRepo) Get(ctx context.Context, ref string) ([]byte, error) {
	args := m.Called(ctx, ref)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBlobRepo) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

var _ repo.BlobRepository = (*mockBlobRepo)(nil)

// мок для repo.ImageRepository: сбой записи метаданных
type mockImageRepo struct{ mock.Mock }

func (m *mockImageRepo) Create(ctx context.Context, img *model.Image) error {
	return m.Called(ctx, img).Error(0)
}

func (m *mockImageRepo) GetByID(ctx context.Context, id string) (*model.Image, error) {
	args := m.Called(ctx, id)
	if img, ok := args.Get(0).(*model.Image); ok {
		return img, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockImageRepo) ListByProduct(ctx context.Context, productID string) ([]model.Image, error) {
	args := m.Called(ctx, productID)
	if l, ok := args.Get(0).([]model.Image); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockImageRepo) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockImageRepo) DeleteByProduct(ctx context.Context, productID string) ([]model.Image, error) {
	args := m.Called(ctx, productID)
	if l, ok := args.Get(0).([]model.Image); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.ImageRepository = (*mockImageRepo)(nil)

// мок для repo.ProductRepository: без ожиданий любой вызов проваливает тест
type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) Create(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string, withImages bool) (*model.Product, error) {
	args := m.Called(ctx, id, withImages)
	if p, ok := args.Get(0).(*model.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if l, ok := args.Get(0).([]model.Product); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, id string, updates map[string]any) (int64, error) {
	args := m.Called(ctx, id, updates)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

var _ repo.ProductRepository = (*mockProductRepo)(nil)
