// Package mnotify exposes the MNotify SMS REST API as a catalog of domain
// functions with explicitly declared parameter schemas.
package mnotify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/i2y/smsbridge/internal/adapter/outbound/httpinvoker"
	"github.com/i2y/smsbridge/internal/domain"
)

// DefaultBaseURL is the public MNotify v2 API root.
const DefaultBaseURL = "https://api.mnotify.com/api"

// apiKeyParam is the query parameter MNotify reads the API key from.
const apiKeyParam = "key"

// Invoker performs one upstream REST call. *httpinvoker.Invoker satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, details httpinvoker.InvocationDetails, params map[string]interface{}) (interface{}, error)
}

// Client builds domain functions bound to one MNotify account.
type Client struct {
	invoker Invoker
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewClient creates a Client. An empty baseURL falls back to DefaultBaseURL.
func NewClient(invoker Invoker, baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		invoker: invoker,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger.With("component", "mnotify_client"),
	}
}

// Functions returns the full catalog of MNotify domain functions.
func (c *Client) Functions() []domain.Function {
	fns := make([]domain.Function, 0, len(endpoints))
	for _, ep := range endpoints {
		ep := ep
		fns = append(fns, domain.Function{
			Name:        ep.name,
			Description: ep.description,
			Params:      ep.params,
			Call: func(ctx context.Context, args domain.Binding) (interface{}, error) {
				return c.call(ctx, ep, args)
			},
		})
	}
	return fns
}

func (c *Client) call(ctx context.Context, ep endpoint, args domain.Binding) (interface{}, error) {
	log := c.logger.With(slog.String("function", ep.name))

	params := map[string]interface{}{}
	if ep.newRequest != nil {
		req := ep.newRequest()
		if err := decodeBinding(args, req); err != nil {
			log.Error("Failed to decode arguments", slog.Any("error", err))
			return nil, fmt.Errorf("%s: invalid arguments: %w", ep.name, err)
		}
		wire, err := encodeWire(req)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", ep.name, err)
		}
		params = wire
	}
	if name, ok := missingPathParam(ep.path, params); ok {
		log.Warn("Missing path parameter", slog.String("param", name))
		return nil, fmt.Errorf("%s: missing path parameter %q", ep.name, name)
	}
	params[apiKeyParam] = c.apiKey

	details := httpinvoker.InvocationDetails{
		Host:        c.baseURL,
		HTTPMethod:  ep.method,
		HTTPPath:    ep.path,
		QueryParams: append([]string{apiKeyParam}, ep.query...),
	}
	log.Debug("Calling MNotify", slog.String("method", ep.method), slog.String("path", ep.path))
	result, err := c.invoker.Invoke(ctx, details, params)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", ep.name, err)
	}
	return result, nil
}

// missingPathParam returns the first {placeholder} in p that params leaves
// unset or blank.
func missingPathParam(p string, params map[string]interface{}) (string, bool) {
	for {
		start := strings.IndexByte(p, '{')
		if start < 0 {
			return "", false
		}
		end := strings.IndexByte(p[start:], '}')
		if end < 0 {
			return "", false
		}
		name := p[start+1 : start+end]
		v, ok := params[name]
		if !ok || v == nil || strings.TrimSpace(fmt.Sprint(v)) == "" {
			return name, true
		}
		p = p[start+end+1:]
	}
}

// decodeBinding fills a request struct from the canonical parameter names.
func decodeBinding(args domain.Binding, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]interface{}(args))
}

// encodeWire renders a request struct under MNotify's field names ("wire" tags).
func encodeWire(req interface{}) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "wire",
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(req); err != nil {
		return nil, err
	}
	return out, nil
}
