package controller

import (
	"errors"
	"fmt"

	"github.com/Song-beanpp/film-survey-app-final/internal/pkg/serverutils"
	"github.com/Song-beanpp/film-survey-app-final/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISurveyController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	ListResponses(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	ExportCsv(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type surveyController struct {
	surveyService service.ISurveyService
}

func NewSurveyController(surveyService service.ISurveyService) ISurveyController {
	return &surveyController{surveyService: surveyService}
}

func (c *surveyController) RegisterRoutes(r fiber.Router) {
	r.Post("/submit", c.Submit)
	r.Get("/responses", c.ListResponses)
	r.Get("/stats", c.Stats)
	r.Get("/export/csv", c.ExportCsv)
	r.Get("/health", c.Health)
}

func (c *surveyController) Submit(ctx *fiber.Ctx) error {
	var payload map[string]any
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse("Invalid request body"))
	}

	fields, err := normalizePayload(payload)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse(err.Error()))
	}

	res, err := c.surveyService.Submit(ctx.Context(), fields)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(serverutils.ErrorResponse("Failed to save response"))
	}
	return ctx.JSON(res)
}

// normalizePayload enforces the wire contract: a flat object whose values are
// strings or string lists. Checkbox groups arrive as lists.
func normalizePayload(payload map[string]any) (map[string]any, error) {
	fields := make(map[string]any, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case []any:
			list := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("field %q has a non-string list element", key)
				}
				list = append(list, s)
			}
			fields[key] = list
		default:
			return nil, fmt.Errorf("field %q has an unsupported value", key)
		}
	}
	return fields, nil
}

func (c *surveyController) ListResponses(ctx *fiber.Ctx) error {
	res, err := c.surveyService.ListAll(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(serverutils.ErrorResponse("Failed to read responses"))
	}
	return ctx.JSON(res)
}

func (c *surveyController) Stats(ctx *fiber.Ctx) error {
	res, err := c.surveyService.Stats(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(serverutils.ErrorResponse("Failed to fetch statistics"))
	}
	return ctx.JSON(res)
}

func (c *surveyController) ExportCsv(ctx *fiber.Ctx) error {
	export, err := c.surveyService.ExportCsv(ctx.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoResponses) {
			return ctx.Status(fiber.StatusNotFound).SendString("No responses to export")
		}
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(serverutils.ErrorResponse("Failed to export responses"))
	}

	ctx.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, "attachment; filename="+export.Filename)
	return ctx.SendString(export.Content)
}

func (c *surveyController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(c.surveyService.Health(ctx.Context()))
}
