package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hallgrim/dayplan/internal/domain"
	"github.com/hallgrim/dayplan/internal/engine"
)

// Default client configuration.
const (
	DefaultTimeout = 10 * time.Second
)

// ClientConfig holds configuration for the API client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the default instrumented client. Optional.
	HTTPClient *http.Client
}

// Client talks to the task-storage API over HTTP JSON. It implements
// engine.Store; persistence calls are issued by the reconciler's dispatch
// goroutines, so the client must be safe for concurrent use (it is:
// http.Client is).
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the API at cfg.BaseURL. The transport is
// instrumented with otelhttp.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
	}
}

// CreateList creates an empty list.
func (c *Client) CreateList(ctx context.Context, title string) (*domain.Container, error) {
	var resp ListResponse
	err := c.do(ctx, http.MethodPost, "/v1/lists", CreateListRequest{Title: title}, &resp)
	if err != nil {
		return nil, err
	}
	return ListToContainer(resp.List), nil
}

// FetchList retrieves a list with its ordered items, ready to seed the
// reconciler cache.
func (c *Client) FetchList(ctx context.Context, listID string) (*domain.Container, error) {
	var resp ListResponse
	err := c.do(ctx, http.MethodGet, "/v1/lists/"+listID, nil, &resp)
	if err != nil {
		return nil, err
	}
	return ListToContainer(resp.List), nil
}

// CreateItem implements engine.Store.
func (c *Client) CreateItem(ctx context.Context, containerID string, params engine.CreateItemParams) ([]engine.ItemRecord, error) {
	req := CreateItemRequest{
		Text:              params.Text,
		Priority:          int(params.Priority),
		DueDate:           params.DueAt,
		IsRecurring:       params.Recurring,
		RecurrencePattern: params.Recurrence,
	}
	var resp CreateItemResponse
	if err := c.do(ctx, http.MethodPost, "/v1/lists/"+containerID+"/items", req, &resp); err != nil {
		return nil, err
	}
	records := make([]engine.ItemRecord, 0, len(resp.Items))
	for _, dto := range resp.Items {
		records = append(records, DTOToRecord(dto))
	}
	return records, nil
}

// UpdateItem implements engine.Store.
func (c *Client) UpdateItem(ctx context.Context, containerID string, record engine.ItemRecord) (engine.ItemRecord, error) {
	req := UpdateItemRequest{Item: RecordToDTO(record)}
	var resp ItemResponse
	path := "/v1/lists/" + containerID + "/items/" + record.ID
	if err := c.do(ctx, http.MethodPut, path, req, &resp); err != nil {
		return engine.ItemRecord{}, err
	}
	return DTOToRecord(resp.Item), nil
}

// DeleteItem implements engine.Store.
func (c *Client) DeleteItem(ctx context.Context, containerID, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/lists/"+containerID+"/items/"+itemID, nil, nil)
}

// UpdatePositions implements engine.Store.
func (c *Client) UpdatePositions(ctx context.Context, containerID string, order []engine.PositionUpdate) error {
	req := ReorderRequest{Positions: make([]PositionDTO, 0, len(order))}
	for _, p := range order {
		req.Positions = append(req.Positions, PositionDTO{ID: p.ID, Position: p.Position})
	}
	return c.do(ctx, http.MethodPost, "/v1/lists/"+containerID+"/items:reorder", req, nil)
}

// MoveToDate implements engine.Store.
func (c *Client) MoveToDate(ctx context.Context, containerID, itemID string, target domain.Date) (bool, error) {
	var resp MoveResponse
	path := "/v1/lists/" + containerID + "/items/" + itemID + ":move"
	if err := c.do(ctx, http.MethodPost, path, MoveRequest{TargetDate: target}, &resp); err != nil {
		return false, err
	}
	return resp.Moved, nil
}

// MoveContainerToDate implements engine.Store.
func (c *Client) MoveContainerToDate(ctx context.Context, containerID string, target domain.Date) (bool, error) {
	var resp MoveResponse
	path := "/v1/lists/" + containerID + ":move"
	if err := c.do(ctx, http.MethodPost, path, MoveRequest{TargetDate: target}, &resp); err != nil {
		return false, err
	}
	return resp.Moved, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransientNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// mapError translates an error envelope into the shared sentinel errors so
// the reconciler can classify failures with errors.Is.
func (c *Client) mapError(resp *http.Response) error {
	var envelope ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		envelope.Error.Message = resp.Status
	}
	detail := envelope.Error

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", domain.ErrTransientNetwork, detail.Message)
	case detail.Code == CodeListNotFound:
		return fmt.Errorf("%w: %s", domain.ErrListNotFound, detail.Message)
	case detail.Code == CodeItemNotFound, resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, detail.Message)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrVersionConflict, detail.Message)
	default:
		return fmt.Errorf("request rejected (%s): %s", detail.Code, detail.Message)
	}
}
