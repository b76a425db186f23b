package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/opencivic/civicpulse/internal/domain"
	"github.com/opencivic/civicpulse/internal/service"
)

var tracer = otel.Tracer("auth")

// IdentifyActor resolves a bearer token, if any, to an administrator id
// and stores it in the request context. It never rejects a request:
// anonymous callers pass through with no requester id, and enforcement
// happens at mutation time inside the usecases.
func IdentifyActor(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyActor")
			defer span.End()

			header := c.Request().Header.Get("authorization")
			if header == "" {
				goto skipIdentification
			}

			{
				split := strings.Split(header, " ")
				if len(split) != 2 || split[0] != "Bearer" {
					goto skipIdentification
				}

				result, err := auth.Authenticate(ctx, split[1])
				if err != nil {
					span.RecordError(err)
					goto skipIdentification
				}

				span.SetAttributes(attribute.String("RequesterId", result.AdminID))
				ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, result.AdminID)
				ctx = context.WithValue(ctx, domain.RequesterSessionCtxKey, result.SessionID)
				c.Set(domain.RequesterIdCtxKey, result.AdminID)
				c.Set(domain.RequesterSessionCtxKey, result.SessionID)
			}

		skipIdentification:
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequesterID extracts the identified administrator id, or "" for
// anonymous requests.
func RequesterID(c echo.Context) string {
	if id, ok := c.Get(domain.RequesterIdCtxKey).(string); ok {
		return id
	}
	return ""
}

// RequesterSession extracts the session id attached by IdentifyActor.
func RequesterSession(c echo.Context) string {
	if id, ok := c.Get(domain.RequesterSessionCtxKey).(string); ok {
		return id
	}
	return ""
}
