package handlers

import (
	"ProductKeeper/internal/apperr"
	"ProductKeeper/internal/service"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipartOverhead запас на служебные поля multipart поверх потолка размера файла.
const multipartOverhead = 1 << 20

// ImageHandler обрабатывает загрузку и удаление изображений товара.
type ImageHandler struct {
	ImageService *service.ImageService
	Logger       *zap.SugaredLogger
	resp         *responder
}

func NewImageHandler(imageService *service.ImageService, logger *zap.SugaredLogger) *ImageHandler {
	return &ImageHandler{ImageService: imageService, Logger: logger, resp: &responder{logger: logger}}
}

// Upload принимает multipart/form-data: файл в поле image, категория в type (или category), isVisible.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	maxSize := h.ImageService.Policy().MaxSizeBytes

	// Лимит общего тела запроса
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.resp.writeError(w, r, multipartError(err, maxSize))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.resp.writeError(w, r, apperr.Validation(apperr.CodeMissingFile, "no file uploaded"))
		return
	}
	defer file.Close()

	// читаем на байт больше потолка, чтобы отличить "ровно потолок" от превышения
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		h.resp.writeError(w, r, multipartError(err, maxSize))
		return
	}

	visible := true
	if v := strings.TrimSpace(r.FormValue("isVisible")); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			h.resp.writeError(w, r, apperr.Validation(apperr.CodeInvalidField, "isVisible must be a boolean"))
			return
		}
		visible = b
	}
	category := r.FormValue("type")
	if category == "" {
		category = r.FormValue("category")
	}

	// тип определяется по содержимому, а не по заявленному клиентом заголовку
	detected := mimetype.Detect(data)
	img, err := h.ImageService.Attach(r.Context(), service.AttachRequest{
		ProductID: productID,
		Category:  category,
		Data:      data,
		Meta: service.ImageMeta{
			FileName:  header.Filename,
			MimeType:  detected.String(),
			SizeBytes: int64(len(data)),
		},
		IsVisible: visible,
	})
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	h.resp.writeJSON(w, http.StatusCreated, img)
}

// ListForProduct возвращает все изображения товара, включая скрытые
func (h *ImageHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	list, err := h.ImageService.ListForProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	h.resp.writeJSON(w, http.StatusOK, list)
}

// File отдаёт содержимое изображения с сохранённым MIME-типом
func (h *ImageHandler) File(w http.ResponseWriter, r *http.Request) {
	img, data, err := h.ImageService.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if img.FileName != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": img.FileName}))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Warnw("failed to write image body", "image_id", img.ID, "error", err)
	}
}

// Delete удаляет изображение
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ImageService.Detach(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func multipartError(err error, maxSize int64) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
		return apperr.Validation(apperr.CodeTooLarge, fmt.Sprintf("file too large, max size is %d bytes", maxSize))
	}
	return apperr.Validation(apperr.CodeInvalidField, "invalid multipart form")
}
