package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	applogger "PriceCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

const stackSize = 4 << 10

// Recover turns a handler panic into a 500 envelope and logs the panic with
// a truncated stack. http.ErrAbortHandler is re-raised so net/http can abort
// the connection.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				perr, ok := r.(error)
				if !ok {
					perr = fmt.Errorf("%v", r)
				}
				if l != nil {
					buf := make([]byte, stackSize)
					buf = buf[:runtime.Stack(buf, false)]
					l.Error("http handler panic",
						applogger.Error(perr),
						applogger.String("method", c.Request().Method),
						applogger.String("route", c.Path()),
						applogger.String("stack", string(buf)),
					)
				}

				if c.Response().Committed {
					err = errors.Join(errPanic, perr)
					return
				}
				err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
					"status":  http.StatusInternalServerError,
					"message": http.StatusText(http.StatusInternalServerError),
				})
			}()
			return next(c)
		}
	}
}

var errPanic = errors.New("handler panicked after response was committed")
