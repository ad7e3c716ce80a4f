package flex

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/i2y/smsbridge/internal/domain"
)

// EnvelopeKey is the single wrapper key some callers nest their arguments under.
const EnvelopeKey = "kwargs"

const instrumentationName = "github.com/i2y/smsbridge/internal/flex"

// Wrapper fronts one domain function with the normalize → alias → bind →
// validate pipeline. It holds only immutable configuration and is safe for
// concurrent use.
type Wrapper struct {
	fn         domain.Function
	tool       domain.Tool
	rules      rules
	logger     *slog.Logger
	tracer     trace.Tracer
	rejections metric.Int64Counter
}

// NewWrapper freezes override and binds it to fn.
func NewWrapper(fn domain.Function, override Override, logger *slog.Logger) (*Wrapper, error) {
	if fn.Name == "" {
		return nil, errors.New("function name must not be empty")
	}
	if fn.Call == nil {
		return nil, errors.New("function " + fn.Name + " has no implementation")
	}
	if logger == nil {
		logger = slog.Default()
	}

	rejections, err := otel.Meter(instrumentationName).Int64Counter(
		"flex.rejections",
		metric.WithDescription("Tool calls rejected before reaching the domain function"),
	)
	if err != nil {
		rejections, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("flex.rejections")
	}

	return &Wrapper{
		fn:         fn,
		tool:       fn.Tool(),
		rules:      compile(override),
		logger:     logger.With("component", "flex_wrapper", slog.String("tool_name", fn.Name)),
		tracer:     otel.Tracer(instrumentationName),
		rejections: rejections,
	}, nil
}

// Name returns the wrapped function's canonical name.
func (w *Wrapper) Name() string { return w.fn.Name }

// Descriptor returns the tool descriptor built from the function's declared
// (uncoerced) parameter shape.
func (w *Wrapper) Descriptor() domain.Tool { return w.tool }

// Call runs the pipeline over args. Validation and coercion failures come back
// as an ErrorResult value with a nil error; the domain function is not invoked
// in that case. Errors from the domain function are returned unchanged.
func (w *Wrapper) Call(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	ctx, span := w.tracer.Start(ctx, "flex.call", trace.WithAttributes(
		attribute.String("tool.name", w.fn.Name),
	))
	defer span.End()

	working := unwrapEnvelope(args)
	Normalize(working)
	resolveAliases(working, w.rules.aliases)

	binding, rejected := bind(w.fn, w.rules, working)
	if rejected != nil {
		return w.reject(ctx, span, "coercion", rejected), nil
	}
	if rejected := validate(w.rules, binding); rejected != nil {
		return w.reject(ctx, span, "validation", rejected), nil
	}

	w.logger.Debug("Invoking domain function", slog.Int("arg_count", len(binding)))
	result, err := w.fn.Call(ctx, binding)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		w.logger.Warn("Domain function failed", slog.Any("error", err))
		return nil, err
	}
	return result, nil
}

func (w *Wrapper) reject(ctx context.Context, span trace.Span, reason string, res *ErrorResult) ErrorResult {
	span.SetAttributes(attribute.String("flex.rejected", reason))
	w.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool.name", w.fn.Name),
		attribute.String("reason", reason),
	))
	w.logger.Info("Rejected tool call", slog.String("reason", reason), slog.String("error", res.Error))
	return *res
}

// unwrapEnvelope returns a shallow copy of args, flattened one level when the
// only key is EnvelopeKey holding a mapping.
func unwrapEnvelope(args map[string]interface{}) map[string]interface{} {
	src := args
	if len(args) == 1 {
		if inner, ok := args[EnvelopeKey].(map[string]interface{}); ok {
			src = inner
		}
	}
	out := make(map[string]interface{}, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// AsErrorResult reports whether v is a structured error produced by a Wrapper.
func AsErrorResult(v interface{}) (ErrorResult, bool) {
	switch t := v.(type) {
	case ErrorResult:
		return t, true
	case *ErrorResult:
		if t != nil {
			return *t, true
		}
	}
	return ErrorResult{}, false
}
