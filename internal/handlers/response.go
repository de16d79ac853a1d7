package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/maynagashev/pagekeeper/internal/diff"
	"github.com/maynagashev/pagekeeper/internal/hubspot"
	"github.com/maynagashev/pagekeeper/internal/middleware"
	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/services"
)

const msgInternalError = "Внутренняя ошибка сервера"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[Handlers] Ошибка кодирования ответа: %v", err)
	}
}

func writeFailure(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, models.ErrorResponse{Success: false, Error: message, Details: details})
}

// writeError переводит ошибку сервиса в HTTP-статус.
// Внешние ошибки передают статус HubSpot, если он известен.
func writeError(w http.ResponseWriter, err error) {
	status, message := classify(err)
	details := err.Error()
	if status == http.StatusInternalServerError {
		// Детали ошибок хранилища остаются в логе
		details = ""
	}
	writeFailure(w, status, message, details)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, diff.ErrInvalidInput):
		return http.StatusBadRequest, services.ErrValidation.Error()
	case errors.Is(err, services.ErrAuth):
		return http.StatusForbidden, services.ErrAuth.Error()
	case errors.Is(err, services.ErrSnapshotNotFound):
		return http.StatusNotFound, services.ErrSnapshotNotFound.Error()
	case errors.Is(err, services.ErrUnsupportedPageType):
		return http.StatusUnprocessableEntity, services.ErrUnsupportedPageType.Error()
	case errors.Is(err, services.ErrExternalFetch):
		return externalStatus(err), services.ErrExternalFetch.Error()
	case errors.Is(err, services.ErrExternalUpdate):
		return externalStatus(err), services.ErrExternalUpdate.Error()
	case errors.Is(err, services.ErrSpreadsheet):
		return http.StatusBadGateway, services.ErrSpreadsheet.Error()
	default:
		return http.StatusInternalServerError, msgInternalError
	}
}

func externalStatus(err error) int {
	if status, ok := hubspot.StatusCode(err); ok && status >= http.StatusBadRequest {
		return status
	}
	return http.StatusBadGateway
}

// authorize сверяет userId из запроса с пользователем из JWT.
// Пустой userId пропускается: его отклонит валидация сервиса.
func authorize(w http.ResponseWriter, r *http.Request, asserted int64, component string) bool {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[%s] Не удалось получить userID из контекста", component)
		writeFailure(w, http.StatusUnauthorized, "Требуется аутентификация", "")
		return false
	}
	if asserted != 0 && asserted != userID {
		log.Printf("[%s] userId %d из запроса не совпадает с пользователем %d", component, asserted, userID)
		writeFailure(w, http.StatusForbidden, services.ErrAuth.Error(), "userId не совпадает с аутентифицированным пользователем")
		return false
	}
	return true
}

func decode(w http.ResponseWriter, r *http.Request, dst any, component string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Printf("[%s] Ошибка декодирования запроса: %v", component, err)
		writeFailure(w, http.StatusBadRequest, "Неверный формат запроса", err.Error())
		return false
	}
	return true
}
