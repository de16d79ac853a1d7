package hubspot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnsupportedPageType - тип страницы не поддерживается API клиента.
var ErrUnsupportedPageType = errors.New("неподдерживаемый тип страницы")

// APIError - ответ HubSpot с кодом, отличным от 2xx.
type APIError struct {
	StatusCode int
	Message    string
	Category   string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HubSpot вернул статус %d", e.StatusCode)
	}
	return fmt.Sprintf("HubSpot вернул статус %d: %s", e.StatusCode, e.Message)
}

// StatusCode возвращает HTTP-статус HubSpot из цепочки ошибок, если он есть.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		apiErr.Message = http.StatusText(resp.StatusCode)
		return apiErr
	}

	var body struct {
		Message  string `json:"message"`
		Category string `json:"category"`
	}
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Category = body.Category
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}
