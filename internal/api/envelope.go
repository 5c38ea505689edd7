package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	defaultClientVersion = "Undefined"
	defaultClientSource  = "Unknown"

	// RequestIDHeader заголовок, из которого берется request_id, если его нет в теле.
	RequestIDHeader = "X-Request-ID"
)

// Response конверт ответа v2. is_success вычисляется при сериализации.
type Response struct {
	StatusCode int            `json:"status_code"`
	Message    string         `json:"message"`
	Data       any            `json:"data,omitempty"`
	Meta       map[string]any `json:"meta"`
	Timestamp  time.Time      `json:"timestamp"`
	ResponseID uuid.UUID      `json:"response_id"`
}

func newResponse(status int, message string, data any) *Response {
	return &Response{
		StatusCode: status,
		Message:    message,
		Data:       data,
		Meta:       map[string]any{},
		Timestamp:  time.Now().UTC(),
		ResponseID: uuid.New(),
	}
}

func (r Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r Response) MarshalJSON() ([]byte, error) {
	type plain Response
	return json.Marshal(struct {
		plain
		IsSuccess bool `json:"is_success"`
	}{plain(r), r.IsSuccess()})
}

// Request конверт запроса v2.
type Request[T any] struct {
	Data          T                 `json:"data"`
	Meta          map[string]string `json:"meta"`
	ClientVersion string            `json:"client_version"`
	ClientSource  string            `json:"client_source"`
	RequestID     string            `json:"request_id"`
}

// decodeRequest читает конверт. Пустое тело допустимо и дает нулевые data.
// Значения по умолчанию заполняются и при ошибке разбора, чтобы ответ нес request_id.
func decodeRequest[T any](r *http.Request) (Request[T], error) {
	var req Request[T]
	err := readRequest(r, &req)
	req.fillDefaults(r)
	return req, err
}

func readRequest(r *http.Request, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

func (req *Request[T]) fillDefaults(r *http.Request) {
	if req.Meta == nil {
		req.Meta = map[string]string{}
	}
	if req.ClientVersion == "" {
		req.ClientVersion = defaultClientVersion
	}
	if req.ClientSource == "" {
		req.ClientSource = defaultClientSource
	}
	if req.RequestID == "" {
		req.RequestID = r.Header.Get(RequestIDHeader)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
}
