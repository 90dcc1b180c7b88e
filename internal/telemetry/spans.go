package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Spans provides helper methods for tracing domain operations beyond what
// the HTTP middleware captures (follows, likes, feed assembly).
type Spans struct {
	tracer trace.Tracer
}

// NewSpans creates a domain-level span helper
func NewSpans() *Spans {
	return &Spans{tracer: otel.Tracer("enlapet")}
}

// TraceFeed starts a span covering one feed page assembly
func (s *Spans) TraceFeed(ctx context.Context, viewerID string, pageSize int) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "feed.assemble",
		trace.WithAttributes(
			attribute.String("feed.viewer_id", viewerID),
			attribute.Int("feed.page_size", pageSize),
		),
	)
}

// TraceFollow starts a span covering a follow or unfollow mutation
func (s *Spans) TraceFollow(ctx context.Context, op, targetType string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "social."+op,
		trace.WithAttributes(attribute.String("follow.target_type", targetType)),
	)
}

// EndSpan finishes a span, recording the error if the operation failed
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
