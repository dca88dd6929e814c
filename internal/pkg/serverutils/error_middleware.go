// FILE: internal/pkg/serverutils/error_middleware.go
package serverutils

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts panics into 500 envelopes so a single bad
// request never takes the server down.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] recovered: %v", r)
				_ = ctx.Status(fiber.StatusInternalServerError).
					JSON(ErrorResponse(500, "internal server error"))
			}
		}()
		return ctx.Next()
	}
}
