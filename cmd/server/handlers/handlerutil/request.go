package handlerutil

import (
	"errors"

	"github.com/Abdulla090/knote/cmd/server/handlers/httperr"
	"github.com/Abdulla090/knote/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NotFoundError maps a store not-found sentinel to a 404 response.
func NotFoundError(err error) error {
	return httperr.Fail(httperr.E{
		Status:  404,
		Message: err.Error(),
	})
}

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ParseAndValidateOptionalBody is ParseAndValidateBody for endpoints whose
// body may be absent entirely; an empty body leaves req at its zero value.
func ParseAndValidateOptionalBody(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return ParseAndValidateBody(c, req, validator, handlerName)
}

// ParseAndValidateQuery parses query parameters and validates them
func ParseAndValidateQuery(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.QueryParser(req); err != nil {
		logger.L().Warn("failed to parse query params", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("query validation failed", "handler", handlerName, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// RequireID extracts the :id URL parameter.
func RequireID(c *fiber.Ctx, handlerName string, notFoundErr error) (string, error) {
	id := c.Params("id")
	if id == "" {
		logger.L().Warn("missing id parameter", "handler", handlerName, "path", c.Path())
		return "", NotFoundError(notFoundErr)
	}
	return id, nil
}

// HandleStoreError maps store errors to HTTP responses: the not-found
// sentinel becomes a 404, everything else a 500.
func HandleStoreError(err error, handlerName, id string, notFoundErr error) error {
	logFields := []any{"handler", handlerName, "error", err}
	if id != "" {
		logFields = append(logFields, "id", id)
	}

	if errors.Is(err, notFoundErr) {
		logger.L().Info("resource not found", logFields...)
		return NotFoundError(notFoundErr)
	}

	logger.L().Error("store operation failed", logFields...)
	return httperr.Fail(httperr.E{
		Status:  500,
		Message: err.Error(),
	})
}
