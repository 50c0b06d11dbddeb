package observability

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// RequestLogger logs each request and feeds the request counters.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			var de *apperrors.DomainError
			switch {
			case errors.As(err, &fe):
				status = fe.Code
			case errors.As(err, &de):
				status = de.HTTPStatus
			default:
				status = fiber.StatusInternalServerError
			}
		}

		metrics.RecordRequest(c.Route().Path, c.Method(), status, elapsed)
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
		)
		return err
	}
}
