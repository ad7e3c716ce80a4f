package httpinvoker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const contentTypeJSON = "application/json"

// InvocationDetails describes one upstream REST endpoint.
type InvocationDetails struct {
	// Host is the base URL of the target service, optionally with a base path
	// (e.g. "https://api.mnotify.com/api").
	Host string `json:"host"`

	// HTTPMethod is the HTTP verb (e.g. "POST", "GET").
	HTTPMethod string `json:"http_method"`

	// HTTPPath is the request path relative to Host; "{name}" placeholders are
	// substituted from params (e.g. "/contact/{contact_id}").
	HTTPPath string `json:"http_path"`

	// QueryParams lists the names of parameters sent as URL query arguments.
	QueryParams []string `json:"query_params,omitempty"`

	// HeaderParams defines static headers to be included in the request.
	HeaderParams map[string]string `json:"header_params,omitempty"`

	// ContentType of the request body. Defaults to application/json.
	ContentType string `json:"content_type,omitempty"`
}

// HTTPError is returned for non-2xx upstream responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Invoker executes InvocationDetails using standard net/http.
type Invoker struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a new HTTP Invoker.
func New(client *http.Client, logger *slog.Logger) *Invoker {
	if client == nil {
		client = http.DefaultClient
	}
	return &Invoker{
		client: client,
		logger: logger.With("component", "http_invoker"),
	}
}

// Invoke executes the upstream HTTP call. Params not consumed by the path or
// the query string become the JSON body for methods that allow one.
func (i *Invoker) Invoke(ctx context.Context, details InvocationDetails, params map[string]interface{}) (interface{}, error) {
	log := i.logger.With(
		slog.String("method", details.HTTPMethod),
		slog.String("path", details.HTTPPath),
	)

	req, err := i.buildRequest(ctx, details, params)
	if err != nil {
		log.Error("Failed to build HTTP request", slog.Any("error", err))
		return nil, err
	}
	log = log.With(slog.String("url", redactedURL(req.URL)))

	log.Debug("Executing HTTP request")
	resp, err := i.client.Do(req)
	if err != nil {
		log.Error("HTTP request failed", slog.Any("error", err))
		return nil, fmt.Errorf("request execution failed: %w", err)
	}
	defer resp.Body.Close()

	log = log.With(slog.Int("status_code", resp.StatusCode))
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", slog.Any("error", err))
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("Received non-success status code", slog.String("response_body", string(body)))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return decodeBody(log, resp.Header.Get("Content-Type"), body), nil
}

func (i *Invoker) buildRequest(ctx context.Context, details InvocationDetails, params map[string]interface{}) (*http.Request, error) {
	base, err := url.Parse(details.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid host URL %s: %w", details.Host, err)
	}

	remaining := make(map[string]interface{}, len(params))
	rawPath := details.HTTPPath
	for k, v := range params {
		placeholder := "{" + k + "}"
		if !strings.Contains(rawPath, placeholder) {
			remaining[k] = v
			continue
		}
		segment := fmt.Sprint(v)
		if segment == "" || segment == "." || segment == ".." {
			return nil, fmt.Errorf("invalid value %q for path parameter %s", segment, k)
		}
		// Escaped so a value can never add path segments of its own.
		rawPath = strings.ReplaceAll(rawPath, placeholder, url.PathEscape(segment))
	}
	rawPath = strings.TrimRight(base.EscapedPath(), "/") + "/" + strings.TrimLeft(rawPath, "/")
	unescaped, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %s: %w", rawPath, err)
	}
	base.Path = unescaped
	base.RawPath = rawPath

	query := base.Query()
	for _, name := range details.QueryParams {
		v, ok := remaining[name]
		if !ok {
			continue
		}
		delete(remaining, name)
		switch vals := v.(type) {
		case []string:
			for _, s := range vals {
				query.Add(name, s)
			}
		default:
			query.Add(name, fmt.Sprintf("%v", v))
		}
	}
	base.RawQuery = query.Encode()

	var body io.Reader
	contentType := details.ContentType
	if contentType == "" {
		contentType = contentTypeJSON
	}
	if allowsBody(details.HTTPMethod) && len(remaining) > 0 {
		if contentType != contentTypeJSON {
			return nil, fmt.Errorf("cannot encode request body for Content-Type: %s", contentType)
		}
		data, err := json.Marshal(remaining)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	} else if len(remaining) > 0 {
		i.logger.Warn("Parameters remain but HTTP method does not support body",
			slog.String("method", details.HTTPMethod),
			slog.Int("remaining_count", len(remaining)))
	}

	req, err := http.NewRequestWithContext(ctx, details.HTTPMethod, base.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range details.HeaderParams {
		req.Header.Set(key, value)
	}
	return req, nil
}

func allowsBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// decodeBody returns the JSON-decoded body when possible, otherwise the raw text.
func decodeBody(log *slog.Logger, contentType string, body []byte) interface{} {
	if len(body) == 0 {
		return ""
	}
	if !strings.Contains(contentType, contentTypeJSON) && !json.Valid(body) {
		return string(body)
	}
	var out interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		log.Warn("Failed to unmarshal JSON response, returning raw body as string", slog.Any("error", err))
		return string(body)
	}
	return out
}

// redactedURL hides the API key query parameter from logs.
func redactedURL(u *url.URL) string {
	c := *u
	q := c.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		c.RawQuery = q.Encode()
	}
	return c.String()
}
