package tracing

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/hookup/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	eventConflict    = "hookup.conflict"
	eventRateLimited = "hookup.rate_limited"

	rateLimitReasonHeader = "X-Rate-Limited-Reason"
)

// GinMiddleware opens one server span per request and annotates it with the
// hookup operation the route performs.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("hookup/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+c.Request.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			ctx = withRequestBaggage(ctx, requestID)
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		span.SetName("HTTP " + c.Request.Method + " " + route)
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("hookup.operation", hookupOperation(c.Request.Method, route)),
			attribute.String("hookup.id", c.Param("id")),
		)...)

		switch {
		case status >= http.StatusInternalServerError:
			if lastErr := c.Errors.Last(); lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		case status == http.StatusConflict:
			span.AddEvent(eventConflict)
		case status == http.StatusTooManyRequests:
			span.AddEvent(eventRateLimited, trace.WithAttributes(SafeAttributes(
				attribute.String("reason", c.Writer.Header().Get(rateLimitReasonHeader)),
			)...))
		}
	}
}

func withRequestBaggage(ctx context.Context, requestID string) context.Context {
	member, err := baggage.NewMember("request_id", requestID)
	if err != nil {
		return ctx
	}
	bag, err := baggage.FromContext(ctx).SetMember(member)
	if err != nil {
		return ctx
	}
	return baggage.ContextWithBaggage(ctx, bag)
}

// hookupOperation names the hookup service call a route maps to.
func hookupOperation(method, route string) string {
	if !strings.HasPrefix(route, "/api/smart-furniture-hookups") {
		return ""
	}
	byID := strings.HasSuffix(route, "/:id")
	switch {
	case method == http.MethodPost && !byID:
		return "create"
	case method == http.MethodGet && !byID:
		return "list"
	case method == http.MethodGet:
		return "get"
	case method == http.MethodPatch:
		return "update"
	case method == http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}
