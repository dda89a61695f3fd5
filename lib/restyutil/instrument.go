package restyutil

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentOutput interface {
	Write(id string, contents string)
}

// messageIdKey carries the dump id of an in-flight request through its
// context, it is only set while debug logging is enabled.
type messageIdKey struct{}

type instrumenter struct {
	output InstrumentOutput
	tracer trace.Tracer
	nextId atomic.Uint64
}

// InstrumentClient hooks spans and raw message dumps onto a client.
// `tracer` may be nil, spans then come from a library tracer named
// "resty". a nil `output` disables instrumentation entirely.
func InstrumentClient(client *resty.Client, tracer trace.Tracer, output InstrumentOutput) {
	if output == nil {
		return
	}
	if tracer == nil {
		tracer = otel.Tracer("resty")
	}

	i := &instrumenter{output: output, tracer: tracer}
	client.OnBeforeRequest(i.before)
	client.OnAfterResponse(i.after)
	client.OnError(i.onError)
}

func (i *instrumenter) before(_ *resty.Client, req *resty.Request) error {
	ctx, _ := i.tracer.Start(req.Context(), req.Method)

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		id := strconv.FormatUint(i.nextId.Add(1), 10)
		slog.DebugContext(
			ctx, "start request",
			"method", req.Method,
			"url", req.URL,
			"message_id", id,
		)
		ctx = context.WithValue(ctx, messageIdKey{}, id)
	}

	req.SetContext(ctx)
	return nil
}

func (i *instrumenter) after(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	// res.Request.RawRequest is nil inside the before hook, request
	// attributes can only be attached after the round trip
	span.SetName(fmt.Sprintf("http %s", res.Request.Method))
	span.SetAttributes(httpconv.ClientRequest(res.Request.RawRequest)...)
	span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)

	if id, ok := ctx.Value(messageIdKey{}).(string); ok {
		i.output.Write(id, formatHttpMessage(res))
		slog.DebugContext(
			ctx, "request succeeded",
			"method", res.Request.Method,
			"url", res.Request.URL,
			"message_id", id,
		)
	}

	return nil
}

func (i *instrumenter) onError(req *resty.Request, err error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, "request failed")
	span.SetName(fmt.Sprintf("http %s", req.Method))
	if req.RawRequest != nil {
		span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
	}

	attrs := []any{"method", req.Method, "url", req.URL, "err", err}
	if id, ok := ctx.Value(messageIdKey{}).(string); ok {
		attrs = append(attrs, "message_id", id)
	}
	slog.ErrorContext(ctx, "request failed", attrs...)
}
