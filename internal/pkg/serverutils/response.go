package serverutils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type SuccessEnvelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func SuccessResponse(message string, data any) SuccessEnvelope {
	return SuccessEnvelope{Message: message, Data: data}
}

func ErrorResponse(message string) ErrorEnvelope {
	return ErrorEnvelope{Error: message}
}

// HttpError carries a status code through the controller layer to the error
// middleware. The message is already safe to show a client.
type HttpError struct {
	Code    int
	Message string
}

func (e *HttpError) Error() string {
	return e.Message
}

func NewHttpError(code int, message string) *HttpError {
	return &HttpError{Code: code, Message: message}
}

var validate = validator.New()

// ValidateRequest runs struct-tag validation on a parsed request body and
// folds failures into a single 400.
func ValidateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return NewHttpError(fiber.StatusBadRequest,
				fmt.Sprintf("field %s failed on %s", f.Field(), f.Tag()))
		}
		return NewHttpError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

// ErrorHandlerMiddleware translates errors escaping the controllers into JSON
// envelopes. Anything that is not an HttpError is reported generically; stack
// traces and internal error text never reach the client.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var httpErr *HttpError
		if errors.As(err, &httpErr) {
			return ctx.Status(httpErr.Code).JSON(ErrorResponse(httpErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse("internal server error"))
	}
}
