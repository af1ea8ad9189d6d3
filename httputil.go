package btcfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// contains http utils shared by the remote service clients

// HTTPError is returned for non 2xx responses.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string // truncated
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("cannot http %s %s: %s", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("cannot http %s %s: %s: %s", e.Method, e.URL, e.Status, e.Body)
}

// CheckResponse returns an *HTTPError when resp is not a success.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
	return &HTTPError{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL.Host + resp.Request.URL.Path,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}

// GetJSON performs an HTTP GET request to the given address and unmarshals
// the JSON response body into data.
func GetJSON(ctx context.Context, client *http.Client, addr string, header http.Header, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := CheckResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(data); err != nil {
		return fmt.Errorf("cannot decode %v%v: %w", resp.Request.URL.Host, resp.Request.URL.Path, err)
	}
	return nil
}
