package handlers_test

import (
	"ProductKeeper/internal/auth"
	"ProductKeeper/internal/config"
	"ProductKeeper/internal/handlers"
	"ProductKeeper/internal/model"
	"ProductKeeper/internal/repo"
	"ProductKeeper/internal/service"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testServer — роутер поверх реальных сервисов и in-memory SQLite.
type testServer struct {
	t      *testing.T
	router http.Handler
	db     *gorm.DB
	tokens *auth.TokenManager
	cfg    *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, &config.Config{AuthSecret: "test-secret", LoginRateLimit: 1000})
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger := zap.NewNop().Sugar()
	products := repo.NewProductRepository(db)
	imageSvc := service.NewImageService(
		products,
		repo.NewImageRepository(db),
		repo.NewBlobRepository(db),
		repo.NewReconciliationLog(db),
		service.DefaultImagePolicy(),
		logger,
	)
	tokens := auth.NewTokenManager(cfg.AuthSecret)
	h := handlers.NewHandler(handlers.Services{
		Users:    service.NewUserService(repo.NewUserRepository(db)),
		Products: service.NewProductService(products, imageSvc, logger),
		Images:   imageSvc,
		Tokens:   tokens,
	}, logger, cfg)

	return &testServer{t: t, router: h.Router, db: db, tokens: tokens, cfg: cfg}
}

// tokenFor выпускает токен для произвольного принципала с ролью role.
func (s *testServer) tokenFor(role model.Role) string {
	s.t.Helper()
	tok, err := s.tokens.Issue("principal-"+string(role), role)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) doJSON(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}
	return s.do(method, path, token, r, "application/json")
}

// upload отправляет multipart с файлом в поле image и дополнительными полями.
func (s *testServer) upload(productID, token string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if data != nil {
		fw, err := mw.CreateFormFile("image", "photo.jpg")
		require.NoError(s.t, err)
		_, err = fw.Write(data)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())
	return s.do(http.MethodPost, "/api/images/upload/"+productID, token, &buf, mw.FormDataContentType())
}

// createProduct создаёт товар от имени редактора и возвращает его id.
func (s *testServer) createProduct(damaged bool) string {
	s.t.Helper()
	rr := s.doJSON(http.MethodPost, "/api/products", s.tokenFor(model.RoleEditor), map[string]any{
		"productName": "Stand mixer",
		"lotNumber":   "L-7",
		"truckNumber": "T-1",
		"source":      "liquidation",
		"upc":         "000111222333",
		"damaged":     damaged,
	})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())
	var p model.Product
	require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p.ID
}

type errResp struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeErr(t *testing.T, rr *httptest.ResponseRecorder) errResp {
	t.Helper()
	var e errResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e), rr.Body.String())
	return e
}

func jpegBytes(n int) []byte {
	b := make([]byte, n)
	copy(b, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00})
	return b
}

func pngBytes() []byte {
	return []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
}
