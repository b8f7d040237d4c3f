package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Song-beanpp/film-survey-app-final/internal/dto"
	"github.com/Song-beanpp/film-survey-app-final/internal/pkg/logger"
	"github.com/Song-beanpp/film-survey-app-final/internal/repository/memory"
	"github.com/Song-beanpp/film-survey-app-final/internal/survey/flow"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("wizard session not found")
	ErrNotReady        = errors.New("wizard flow is not at the final step")
)

// ValidationError reports required questions still unanswered on the step a
// transition was attempted from.
type ValidationError struct {
	MissingKeys []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required answers: %v", e.MissingKeys)
}

// IWizardService hosts one flow engine per respondent session and bridges the
// final step into the submission service.
type IWizardService interface {
	Start() *dto.WizardStateResponse
	State(sessionId string) (*dto.WizardStateResponse, error)
	SetAnswers(sessionId string, answers map[string]any) (*dto.WizardStateResponse, error)
	Next(sessionId string) (*dto.WizardAdvanceResponse, error)
	Prev(sessionId string) (*dto.WizardStateResponse, error)
	Submit(ctx context.Context, sessionId string) (*dto.WizardSubmitResponse, error)
}

type wizardService struct {
	sessions *memory.SessionRepository
	surveys  ISurveyService
	logger   logger.ILogger
}

func NewWizardService(sessions *memory.SessionRepository, surveys ISurveyService, log logger.ILogger) IWizardService {
	return &wizardService{
		sessions: sessions,
		surveys:  surveys,
		logger:   log,
	}
}

func (s *wizardService) Start() *dto.WizardStateResponse {
	sessionId := uuid.NewString()
	engine := flow.New()
	s.sessions.Save(sessionId, engine)

	s.logger.Info("wizard", "session started", map[string]interface{}{"session": sessionId})
	return s.state(sessionId, engine)
}

func (s *wizardService) engine(sessionId string) (*flow.Engine, error) {
	engine, ok := s.sessions.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return engine, nil
}

func (s *wizardService) state(sessionId string, engine *flow.Engine) *dto.WizardStateResponse {
	return &dto.WizardStateResponse{
		SessionId:    sessionId,
		Step:         engine.Current(),
		Progress:     engine.Progress(),
		RequiredKeys: engine.RequiredKeys(),
		Terminal:     engine.IsTerminal(),
		Terminated:   engine.Terminated(),
	}
}

func (s *wizardService) State(sessionId string) (*dto.WizardStateResponse, error) {
	engine, err := s.engine(sessionId)
	if err != nil {
		return nil, err
	}
	return s.state(sessionId, engine), nil
}

func (s *wizardService) SetAnswers(sessionId string, answers map[string]any) (*dto.WizardStateResponse, error) {
	engine, err := s.engine(sessionId)
	if err != nil {
		return nil, err
	}
	for key, value := range answers {
		if err := engine.Set(key, value); err != nil {
			return nil, err
		}
	}
	s.sessions.Save(sessionId, engine)
	return s.state(sessionId, engine), nil
}

func (s *wizardService) Next(sessionId string) (*dto.WizardAdvanceResponse, error) {
	engine, err := s.engine(sessionId)
	if err != nil {
		return nil, err
	}

	result := engine.Advance()
	if result.Terminated {
		// Consent declined: the flow is over and the session is dropped so
		// a fresh visit starts clean.
		s.sessions.Delete(sessionId)
	} else {
		s.sessions.Save(sessionId, engine)
	}

	return &dto.WizardAdvanceResponse{
		Step:          result.Step,
		Progress:      engine.Progress(),
		Invalid:       result.Invalid,
		MissingKeys:   result.MissingKeys,
		HighlightMs:   result.HighlightFor.Milliseconds(),
		Disqualified:  result.Disqualified,
		Terminated:    result.Terminated,
		ReadyToSubmit: result.ReadyToSubmit,
		Notice:        result.Notice,
	}, nil
}

func (s *wizardService) Prev(sessionId string) (*dto.WizardStateResponse, error) {
	engine, err := s.engine(sessionId)
	if err != nil {
		return nil, err
	}
	engine.Retreat()
	s.sessions.Save(sessionId, engine)
	return s.state(sessionId, engine), nil
}

func (s *wizardService) Submit(ctx context.Context, sessionId string) (*dto.WizardSubmitResponse, error) {
	engine, err := s.engine(sessionId)
	if err != nil {
		return nil, err
	}
	if engine.Current() != flow.StepDemographic {
		return nil, ErrNotReady
	}
	if missing := engine.Validate(); len(missing) > 0 {
		return nil, &ValidationError{MissingKeys: missing}
	}

	ack, err := s.surveys.Submit(ctx, engine.Flatten())
	if err != nil {
		// The form stays editable; the engine state is untouched.
		return nil, err
	}

	engine.Complete()
	s.sessions.Save(sessionId, engine)

	return &dto.WizardSubmitResponse{
		Success:  ack.Success,
		Message:  ack.Message,
		Step:     engine.Current(),
		Progress: engine.Progress(),
	}, nil
}
