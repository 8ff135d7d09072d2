package scenario

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"time"
)

// Response is the transport-independent view of an HTTP response.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Target abstracts where scenarios are executed: an in-process handler
// or a live server.
type Target interface {
	Do(method, path string, headers map[string]string, body []byte) (*Response, error)
}

type handlerTarget struct {
	handler http.Handler
}

// NewHandlerTarget runs scenarios against an http.Handler in-process,
// without opening a socket.
func NewHandlerTarget(h http.Handler) Target {
	return &handlerTarget{handler: h}
}

func (t *handlerTarget) Do(method, path string, headers map[string]string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	t.handler.ServeHTTP(rec, req)

	return &Response{
		Status:  rec.Code,
		Headers: rec.Header(),
		Body:    rec.Body.Bytes(),
	}, nil
}

type httpTarget struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTarget runs scenarios against a live base URL with an explicit
// request timeout.
func NewHTTPTarget(baseURL string, timeout time.Duration) Target {
	return &httpTarget{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *httpTarget) Do(method, path string, headers map[string]string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, t.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    data,
	}, nil
}
