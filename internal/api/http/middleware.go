package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/spec-kit/character-gallery/internal/i18n"
	"github.com/spec-kit/character-gallery/internal/observability"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration, locale language.Tag) {
	app.Use(observability.RequestIDMiddleware())
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics, locale))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, locale language.Tag) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("request_id", observability.RequestID(c)))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				writeError(c, logger, metrics, locale, err)
				err = nil
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, locale language.Tag, err error) {
	var domainErr *apperrors.DomainError
	if fiberErr, ok := err.(*fiber.Error); ok {
		// Routing errors (404/405) raised by fiber itself.
		domainErr = apperrors.NewDomainError(codeForStatus(fiberErr.Code), fiberErr.Code, nil, "%s", fiberErr.Message)
	} else {
		domainErr = apperrors.ToDomainError(err)
	}
	metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)

	msg := i18n.Localize(i18n.Match(c.Get(fiber.HeaderAcceptLanguage), locale), domainErr)
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": msg.Text,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	if len(msg.Fields) > 0 {
		body["fields"] = msg.Fields
	}
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.Error(domainErr),
			zap.String("request_id", observability.RequestID(c)))
	}
	c.Status(domainErr.HTTPStatus)
	_ = c.JSON(fiber.Map{"error": body})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return apperrors.CodeNotFound
	case fiber.StatusUnauthorized:
		return apperrors.CodeUnauthenticated
	case fiber.StatusForbidden:
		return apperrors.CodeForbidden
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
		return apperrors.CodeValidationFailed
	default:
		return apperrors.CodeInternal
	}
}
