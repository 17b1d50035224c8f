package ratelimit

import (
	"github.com/labstack/echo/v4"

	xhttp "PriceCast/pkg/http"
)

// Middleware rejects requests over the per-IP limit with 429.
func Middleware(l *Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many forecast requests, slow down"))
			}
			return next(c)
		}
	}
}
