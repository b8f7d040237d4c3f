package controller

import (
	"errors"

	"github.com/Song-beanpp/film-survey-app-final/internal/dto"
	"github.com/Song-beanpp/film-survey-app-final/internal/pkg/serverutils"
	"github.com/Song-beanpp/film-survey-app-final/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWizardController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
	SetAnswers(ctx *fiber.Ctx) error
	Next(ctx *fiber.Ctx) error
	Prev(ctx *fiber.Ctx) error
	Submit(ctx *fiber.Ctx) error
}

type wizardController struct {
	wizardService service.IWizardService
}

func NewWizardController(wizardService service.IWizardService) IWizardController {
	return &wizardController{wizardService: wizardService}
}

func (c *wizardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/wizard")
	h.Post("/start", c.Start)
	h.Get("/:id", c.State)
	h.Put("/:id/answers", c.SetAnswers)
	h.Post("/:id/next", c.Next)
	h.Post("/:id/prev", c.Prev)
	h.Post("/:id/submit", c.Submit)
}

func (c *wizardController) Start(ctx *fiber.Ctx) error {
	return ctx.JSON(c.wizardService.Start())
}

func (c *wizardController) State(ctx *fiber.Ctx) error {
	res, err := c.wizardService.State(ctx.Params("id"))
	if err != nil {
		return mapWizardError(err)
	}
	return ctx.JSON(res)
}

func (c *wizardController) SetAnswers(ctx *fiber.Ctx) error {
	var req dto.WizardAnswersRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewHttpError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.wizardService.SetAnswers(ctx.Params("id"), req.Answers)
	if err != nil {
		return mapWizardError(err)
	}
	return ctx.JSON(res)
}

func (c *wizardController) Next(ctx *fiber.Ctx) error {
	res, err := c.wizardService.Next(ctx.Params("id"))
	if err != nil {
		return mapWizardError(err)
	}
	return ctx.JSON(res)
}

func (c *wizardController) Prev(ctx *fiber.Ctx) error {
	res, err := c.wizardService.Prev(ctx.Params("id"))
	if err != nil {
		return mapWizardError(err)
	}
	return ctx.JSON(res)
}

func (c *wizardController) Submit(ctx *fiber.Ctx) error {
	res, err := c.wizardService.Submit(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return mapWizardError(err)
	}
	return ctx.JSON(res)
}

func mapWizardError(err error) error {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return serverutils.NewHttpError(fiber.StatusNotFound, "session not found or expired")
	case errors.Is(err, service.ErrNotReady):
		return serverutils.NewHttpError(fiber.StatusConflict, "flow is not at the final step")
	case errors.As(err, &verr):
		return serverutils.NewHttpError(fiber.StatusBadRequest, verr.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		return serverutils.NewHttpError(fiber.StatusServiceUnavailable,
			"storage unavailable, please retry")
	default:
		return serverutils.NewHttpError(fiber.StatusInternalServerError, "internal server error")
	}
}
