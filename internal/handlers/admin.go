package handlers

import (
	"ProductKeeper/internal/service"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// AdminHandler служебные эндпоинты администратора.
type AdminHandler struct {
	ImageService *service.ImageService
	resp         *responder
}

func NewAdminHandler(imageService *service.ImageService, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{ImageService: imageService, resp: &responder{logger: logger}}
}

// Reconciliation возвращает последние расхождения файлов и метаданных (?limit=N).
func (h *AdminHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.ImageService.Reconciliation(r.Context(), limit)
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	h.resp.writeJSON(w, http.StatusOK, events)
}
