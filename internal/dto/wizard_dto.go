package dto

// WizardAnswersRequest carries a batch of answers for the active session.
// Values are strings or string lists, keyed by the flat question keys.
type WizardAnswersRequest struct {
	Answers map[string]any `json:"answers" validate:"required"`
}

// WizardStateResponse describes a session after any wizard call.
type WizardStateResponse struct {
	SessionId    string   `json:"sessionId"`
	Step         int      `json:"step"`
	Progress     float64  `json:"progress"`
	RequiredKeys []string `json:"requiredKeys,omitempty"`
	Terminal     bool     `json:"terminal"`
	Terminated   bool     `json:"terminated"`
}

// WizardAdvanceResponse reports an attempted step transition.
type WizardAdvanceResponse struct {
	Step          int      `json:"step"`
	Progress      float64  `json:"progress"`
	Invalid       bool     `json:"invalid,omitempty"`
	MissingKeys   []string `json:"missingKeys,omitempty"`
	HighlightMs   int64    `json:"highlightMs,omitempty"`
	Disqualified  bool     `json:"disqualified,omitempty"`
	Terminated    bool     `json:"terminated,omitempty"`
	ReadyToSubmit bool     `json:"readyToSubmit,omitempty"`
	Notice        string   `json:"notice,omitempty"`
}

// WizardSubmitResponse combines the submission acknowledgment with the
// session's terminal state.
type WizardSubmitResponse struct {
	Success  bool    `json:"success"`
	Message  string  `json:"message"`
	Step     int     `json:"step"`
	Progress float64 `json:"progress"`
}
