package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/services"
)

// PageHandler обрабатывает бэкап, предпросмотр правок из таблицы и сравнение со снимком.
type PageHandler struct {
	service services.PageService
}

// NewPageHandler создает новый экземпляр PageHandler.
func NewPageHandler(s services.PageService) *PageHandler {
	return &PageHandler{service: s}
}

// Backup обрабатывает POST /api/backup.
func (h *PageHandler) Backup(w http.ResponseWriter, r *http.Request) {
	var req models.BackupRequest
	if !decode(w, r, &req, "PageHandler:Backup") || !authorize(w, r, req.UserID, "PageHandler:Backup") {
		return
	}

	resp, err := h.service.Backup(r.Context(), req)
	if err != nil {
		log.Printf("[PageHandler:Backup] Бэкап пользователя %d не выполнен: %v", req.UserID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Preview обрабатывает POST /api/preview.
func (h *PageHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req models.PreviewRequest
	if !decode(w, r, &req, "PageHandler:Preview") || !authorize(w, r, req.UserID, "PageHandler:Preview") {
		return
	}

	resp, err := h.service.Preview(r.Context(), req)
	if err != nil {
		log.Printf("[PageHandler:Preview] Ошибка предпросмотра вкладки '%s': %v", req.TabName, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Compare обрабатывает POST /api/compare.
func (h *PageHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if !decode(w, r, &req, "PageHandler:Compare") || !authorize(w, r, req.UserID, "PageHandler:Compare") {
		return
	}

	resp, err := h.service.Compare(r.Context(), req)
	if err != nil {
		log.Printf("[PageHandler:Compare] Сравнение страницы %s не выполнено: %v", req.PageID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Archive обрабатывает GET /api/archive?userId&pageId&date и отдает сырой JSON страницы.
func (h *PageHandler) Archive(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID, err := strconv.ParseInt(query.Get("userId"), 10, 64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, services.ErrValidation.Error(), "userId должен быть числом")
		return
	}
	if !authorize(w, r, userID, "PageHandler:Archive") {
		return
	}

	raw, err := h.service.ArchivedPage(r.Context(), userID, query.Get("pageId"), query.Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(raw); err != nil {
		log.Printf("[PageHandler:Archive] Ошибка отправки архива: %v", err)
	}
}
