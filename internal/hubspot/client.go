// Package hubspot - клиент страниц HubSpot CMS v3 (site pages и landing pages).
// Токен доступа передается в каждом вызове: клиент не хранит учетных данных.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/maynagashev/pagekeeper/internal/models"
)

// DefaultBaseURL - адрес публичного API HubSpot.
const DefaultBaseURL = "https://api.hubapi.com"

const (
	defaultTimeout = 30 * time.Second
	pageListLimit  = 100
	maxErrorBody   = 64 << 10
)

var pagePaths = map[string]string{
	models.PageTypeSite:    "/cms/v3/pages/site-pages",
	models.PageTypeLanding: "/cms/v3/pages/landing-pages",
}

// Page - страница HubSpot. Properties содержит весь JSON страницы как есть.
type Page struct {
	ID         string
	Name       string
	Slug       string
	URL        string
	Type       string
	Properties map[string]any
}

// PageStore определяет операции над страницами HubSpot.
type PageStore interface {
	GetPage(ctx context.Context, token, pageType, pageID string) (*Page, error)
	UpdatePage(ctx context.Context, token, pageType, pageID string, properties map[string]any) (*Page, error)
	ListPages(ctx context.Context, token, pageType string) ([]Page, error)
}

// Client реализует PageStore поверх HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ PageStore = (*Client)(nil)

// NewClient создает клиент. Пустой baseURL означает DefaultBaseURL,
// nil httpClient - клиент с таймаутом по умолчанию.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SupportedPageType сообщает, умеет ли клиент работать с таким типом страниц.
func SupportedPageType(pageType string) bool {
	_, ok := pagePaths[pageType]
	return ok
}

// PageTypes возвращает все поддерживаемые типы страниц.
func PageTypes() []string {
	return []string{models.PageTypeSite, models.PageTypeLanding}
}

// GetPage получает полное состояние страницы.
func (c *Client) GetPage(ctx context.Context, token, pageType, pageID string) (*Page, error) {
	endpoint, err := c.pageURL(pageType, pageID)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err = c.do(ctx, token, http.MethodGet, endpoint, nil, &raw); err != nil {
		log.Printf("[HubSpot] Ошибка получения страницы %s (%s): %v", pageID, pageType, err)
		return nil, err
	}
	return newPage(pageType, raw), nil
}

// UpdatePage отправляет PATCH с частичным набором свойств и возвращает
// обновленное состояние страницы. Если HubSpot ответил без тела, у страницы
// заполнен только ID, а Properties пуст.
func (c *Client) UpdatePage(
	ctx context.Context,
	token, pageType, pageID string,
	properties map[string]any,
) (*Page, error) {
	endpoint, err := c.pageURL(pageType, pageID)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err = c.do(ctx, token, http.MethodPatch, endpoint, properties, &raw); err != nil {
		log.Printf("[HubSpot] Ошибка обновления страницы %s (%s): %v", pageID, pageType, err)
		return nil, err
	}

	log.Printf("[HubSpot] Страница %s (%s) обновлена, свойств: %d", pageID, pageType, len(properties))
	page := newPage(pageType, raw)
	if page.ID == "" {
		page.ID = pageID
	}
	return page, nil
}

type listResponse struct {
	Results []map[string]any `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// ListPages получает все страницы указанного типа, проходя по курсорам пагинации.
func (c *Client) ListPages(ctx context.Context, token, pageType string) ([]Page, error) {
	base, ok := pagePaths[pageType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPageType, pageType)
	}

	var (
		pages []Page
		after string
	)
	for {
		query := url.Values{}
		query.Set("limit", fmt.Sprint(pageListLimit))
		if after != "" {
			query.Set("after", after)
		}
		endpoint := c.baseURL + base + "?" + query.Encode()

		var resp listResponse
		if err := c.do(ctx, token, http.MethodGet, endpoint, nil, &resp); err != nil {
			log.Printf("[HubSpot] Ошибка получения списка страниц (%s): %v", pageType, err)
			return nil, err
		}
		for _, raw := range resp.Results {
			pages = append(pages, *newPage(pageType, raw))
		}

		if resp.Paging == nil || resp.Paging.Next == nil || resp.Paging.Next.After == "" {
			break
		}
		after = resp.Paging.Next.After
	}

	log.Printf("[HubSpot] Получено %d страниц типа %s", len(pages), pageType)
	return pages, nil
}

func (c *Client) pageURL(pageType, pageID string) (string, error) {
	base, ok := pagePaths[pageType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPageType, pageType)
	}
	if pageID == "" {
		return "", errors.New("не указан ID страницы")
	}
	return c.baseURL + base + "/" + url.PathEscape(pageID), nil
}

// do выполняет запрос с bearer-токеном. Транспорт с токеном собирается на каждый
// вызов поверх общего http.Client.
func (c *Client) do(ctx context.Context, token, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка кодирования тела запроса: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к HubSpot: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	authCtx := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	client := oauth2.NewClient(authCtx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	client.Timeout = c.httpClient.Timeout

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса к HubSpot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		// 204 или пустое тело: запрос выполнен, out остается нулевым
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("ошибка декодирования ответа HubSpot: %w", err)
	}
	return nil
}

func newPage(pageType string, raw map[string]any) *Page {
	if raw == nil {
		raw = map[string]any{}
	}
	return &Page{
		ID:         str(raw["id"]),
		Name:       str(raw["name"]),
		Slug:       str(raw["slug"]),
		URL:        str(raw["url"]),
		Type:       pageType,
		Properties: raw,
	}
}

func str(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
