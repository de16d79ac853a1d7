// Package spreadsheet - работа с Google Sheets: вкладки бэкапа, запись и чтение строк.
package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// TabStatus - результат идемпотентного создания вкладки.
type TabStatus string

// Возможные результаты создания вкладки.
const (
	TabCreated       TabStatus = "created"
	TabAlreadyExists TabStatus = "already-exists"
	TabFailed        TabStatus = "failed"
)

// Tab - вкладка таблицы. SheetID - числовой идентификатор вкладки,
// который нужен для форматирования.
type Tab struct {
	Title   string
	SheetID int64
	Status  TabStatus
}

// Store определяет операции с таблицей пользователя.
type Store interface {
	EnsureTab(ctx context.Context, token, spreadsheetID, title string) (Tab, error)
	WriteRows(ctx context.Context, token, spreadsheetID, title string, rows [][]any) error
	ReadRows(ctx context.Context, token, spreadsheetID, title string) ([][]any, error)
	FormatHeader(ctx context.Context, token, spreadsheetID string, sheetID int64, columns int) error
}

// Client реализует Store поверх Sheets API v4.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

var _ Store = (*Client)(nil)

// NewClient создает клиент. endpoint пустой для боевого API;
// httpClient служит базовым транспортом, поверх которого добавляется токен.
func NewClient(httpClient *http.Client, endpoint string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if endpoint != "" && !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &Client{httpClient: httpClient, endpoint: endpoint}
}

func (c *Client) service(ctx context.Context, token string) (*sheets.Service, error) {
	authCtx := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	client := oauth2.NewClient(authCtx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать клиент Google Sheets: %w", err)
	}
	return svc, nil
}

// EnsureTab находит вкладку по названию или создает ее.
// Создание идемпотентно: существующая вкладка - это TabAlreadyExists, а не ошибка.
func (c *Client) EnsureTab(ctx context.Context, token, spreadsheetID, title string) (Tab, error) {
	failed := Tab{Title: title, Status: TabFailed}

	svc, err := c.service(ctx, token)
	if err != nil {
		return failed, err
	}

	if tab, ok, err := findTab(ctx, svc, spreadsheetID, title); err != nil {
		return failed, err
	} else if ok {
		log.Printf("[Sheets] Вкладка '%s' уже существует (sheetId=%d)", title, tab.SheetID)
		return tab, nil
	}

	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: title},
				},
			},
		},
	}
	resp, err := svc.Spreadsheets.BatchUpdate(spreadsheetID, &rq).Context(ctx).Do()
	if err != nil {
		// Вкладку могли создать параллельно между чтением и добавлением
		if isAlreadyExists(err) {
			if tab, ok, findErr := findTab(ctx, svc, spreadsheetID, title); findErr == nil && ok {
				return tab, nil
			}
		}
		log.Printf("[Sheets] Ошибка создания вкладки '%s': %v", title, err)
		return failed, fmt.Errorf("ошибка создания вкладки '%s': %w", title, err)
	}

	tab := Tab{Title: title, Status: TabCreated}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		tab.SheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}
	log.Printf("[Sheets] Вкладка '%s' создана (sheetId=%d)", title, tab.SheetID)
	return tab, nil
}

// WriteRows очищает вкладку и записывает строки начиная с A1.
func (c *Client) WriteRows(ctx context.Context, token, spreadsheetID, title string, rows [][]any) error {
	svc, err := c.service(ctx, token)
	if err != nil {
		return err
	}

	clearRq := sheets.BatchClearValuesRequest{Ranges: []string{quote(title)}}
	if _, err = svc.Spreadsheets.Values.BatchClear(spreadsheetID, &clearRq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("ошибка очистки вкладки '%s': %w", title, err)
	}

	rq := sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data: []*sheets.ValueRange{
			{Range: quote(title) + "!A1", Values: rows},
		},
	}
	if _, err = svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("ошибка записи строк во вкладку '%s': %w", title, err)
	}

	log.Printf("[Sheets] Во вкладку '%s' записано %d строк", title, len(rows))
	return nil
}

// ReadRows читает все заполненные строки вкладки.
func (c *Client) ReadRows(ctx context.Context, token, spreadsheetID, title string) ([][]any, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, quote(title)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения вкладки '%s': %w", title, err)
	}

	return resp.Values, nil
}

// FormatHeader делает первую строку вкладки жирной и закрепляет ее.
// Вкладка задается явным sheetID, полученным из EnsureTab.
func (c *Client) FormatHeader(ctx context.Context, token, spreadsheetID string, sheetID int64, columns int) error {
	svc, err := c.service(ctx, token)
	if err != nil {
		return err
	}

	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          sheetID,
						StartRowIndex:    0,
						EndRowIndex:      1,
						StartColumnIndex: 0,
						EndColumnIndex:   int64(columns),
						ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat.textFormat.bold",
				},
			},
			{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:         sheetID,
						GridProperties:  &sheets.GridProperties{FrozenRowCount: 1},
						ForceSendFields: []string{"SheetId"},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		},
	}

	if _, err = svc.Spreadsheets.BatchUpdate(spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("ошибка форматирования заголовка вкладки %d: %w", sheetID, err)
	}
	return nil
}

func findTab(ctx context.Context, svc *sheets.Service, spreadsheetID, title string) (Tab, bool, error) {
	spreadsheet, err := svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return Tab{}, false, fmt.Errorf("ошибка чтения таблицы %s: %w", spreadsheetID, err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return Tab{Title: title, SheetID: sheet.Properties.SheetId, Status: TabAlreadyExists}, true, nil
		}
	}
	return Tab{}, false, nil
}

func isAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) &&
		apiErr.Code == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(apiErr.Message), "already exists")
}

// quote экранирует название вкладки для A1-нотации.
func quote(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
