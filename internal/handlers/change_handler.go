package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/services"
)

// ChangeHandler обрабатывает откат полей, пакетную синхронизацию и журнал изменений.
type ChangeHandler struct {
	service services.ChangeService
}

// NewChangeHandler создает новый экземпляр ChangeHandler.
func NewChangeHandler(s services.ChangeService) *ChangeHandler {
	return &ChangeHandler{service: s}
}

// Revert обрабатывает POST /api/revert.
func (h *ChangeHandler) Revert(w http.ResponseWriter, r *http.Request) {
	var req models.RevertRequest
	if !decode(w, r, &req, "ChangeHandler:Revert") || !authorize(w, r, req.UserID, "ChangeHandler:Revert") {
		return
	}

	resp, err := h.service.Revert(r.Context(), req)
	if err != nil {
		log.Printf("[ChangeHandler:Revert] Откат %s/%s не выполнен: %v", req.PageID, req.FieldName, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Sync обрабатывает POST /api/sync. Ошибки отдельных страниц возвращаются в теле с кодом 200.
func (h *ChangeHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req models.SyncRequest
	if !decode(w, r, &req, "ChangeHandler:Sync") || !authorize(w, r, req.UserID, "ChangeHandler:Sync") {
		return
	}

	resp, err := h.service.Sync(r.Context(), req)
	if err != nil {
		log.Printf("[ChangeHandler:Sync] Синхронизация отклонена: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// History обрабатывает GET /api/history?userId&date&pageId.
func (h *ChangeHandler) History(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var userID int64
	if raw := query.Get("userId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, services.ErrValidation.Error(), "userId должен быть числом")
			return
		}
		userID = parsed
	}
	if !authorize(w, r, userID, "ChangeHandler:History") {
		return
	}

	changes, err := h.service.History(r.Context(), userID, query.Get("date"), query.Get("pageId"))
	if err != nil {
		log.Printf("[ChangeHandler:History] Ошибка чтения журнала: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.HistoryResponse{Success: true, Changes: changes})
}
