package bootstrap

import (
	"github.com/Song-beanpp/film-survey-app-final/internal/config"
	"github.com/Song-beanpp/film-survey-app-final/internal/controller"
	"github.com/Song-beanpp/film-survey-app-final/internal/pkg/logger"
	"github.com/Song-beanpp/film-survey-app-final/internal/repository/contract"
	"github.com/Song-beanpp/film-survey-app-final/internal/repository/implementation"
	"github.com/Song-beanpp/film-survey-app-final/internal/repository/memory"
	"github.com/Song-beanpp/film-survey-app-final/internal/service"
	"github.com/Song-beanpp/film-survey-app-final/pkg/database"
)

type Container struct {
	SurveyController controller.ISurveyController
	WizardController controller.IWizardController

	Logger logger.ILogger
}

func NewContainer(gateway *database.MongoGateway, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	mongoRepo := implementation.NewMongoResponseRepository(gateway)
	var fileRepo contract.ResponseRepository
	if cfg.Storage.FallbackEnabled {
		fileRepo = implementation.NewFileResponseRepository(cfg.Storage.FallbackFile)
	}

	surveyService := service.NewSurveyService(gateway, mongoRepo, fileRepo, cfg.Storage, sysLogger)

	sessions := memory.NewSessionRepository()
	wizardService := service.NewWizardService(sessions, surveyService, sysLogger)

	return &Container{
		SurveyController: controller.NewSurveyController(surveyService),
		WizardController: controller.NewWizardController(wizardService),
		Logger:           sysLogger,
	}
}
