package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lukthan"

// StartTurnSpan starts a span for one chat turn.
func StartTurnSpan(ctx context.Context, turnID, endpoint string, guided bool) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "turn",
		trace.WithAttributes(
			attribute.String("turn.id", turnID),
			attribute.String("turn.endpoint", endpoint),
			attribute.Bool("turn.guided", guided),
		),
	)
}

// StartUploadSpan starts a span for a file upload.
func StartUploadSpan(ctx context.Context, name, mimeType string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "upload",
		trace.WithAttributes(
			attribute.String("file.name", name),
			attribute.String("file.mime_type", mimeType),
		),
	)
}

// StartTranscribeSpan starts a span for a voice transcription.
func StartTranscribeSpan(ctx context.Context, mimeType string, size int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "transcribe",
		trace.WithAttributes(
			attribute.String("audio.mime_type", mimeType),
			attribute.Int("audio.bytes", size),
		),
	)
}
