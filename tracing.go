package fsmkit

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "fsmkit"

// startSendSpan creates the root span for one Send. Returns a no-op span when
// tracing is disabled. The caller ends it via endSendSpan.
func (in *Interpreter) startSendSpan(ctx context.Context, event Event) (context.Context, trace.Span) {
	if !in.traced {
		return ctx, trace.SpanFromContext(context.Background())
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "fsm.send")
	span.SetAttributes(
		attribute.String("machine", in.def.ID),
		attribute.String("instance", in.id),
		attribute.String("event", string(event.Type)),
		attribute.String("state", string(in.current)),
	)
	return ctx, span
}

func endSendSpan(span trace.Span, state string, err error) {
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.String("state.after", state))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// startActionSpan creates a child span for one action invocation.
func (in *Interpreter) startActionSpan(ctx context.Context, phase string, action ActionRef, state StateID) (context.Context, trace.Span) {
	if !in.traced {
		return ctx, trace.SpanFromContext(context.Background())
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "fsm.action."+string(action))
	span.SetAttributes(
		attribute.String("machine", in.def.ID),
		attribute.String("action", string(action)),
		attribute.String("phase", phase),
		attribute.String("state", string(state)),
	)
	return ctx, span
}

func endActionSpan(span trace.Span, err error) {
	if !span.IsRecording() {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
