package chat

import (
	"github.com/homequote/homequote/internal/catalog"
	"github.com/homequote/homequote/internal/pricing"
	"github.com/homequote/homequote/internal/visual"
)

// ServiceChoice is one entry of the service menu.
type ServiceChoice struct {
	Key   catalog.ServiceKey `json:"key"`
	Label string             `json:"label"`
}

// Question is a question presented to the visitor, with the button-style
// options the widget should render.
type Question struct {
	ID      string               `json:"id"`
	Prompt  string               `json:"prompt"`
	Type    catalog.QuestionType `json:"type"`
	Unit    string               `json:"unit,omitempty"`
	Options []catalog.Option     `json:"options,omitempty"`
	Default string               `json:"default,omitempty"`
}

// AnswerLine is one formatted answer in the quote summary.
type AnswerLine struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// Quote is the final price presentation.
type Quote struct {
	Service     catalog.ServiceKey `json:"service"`
	ServiceName string             `json:"service_name"`
	Price       string             `json:"price"`
	PriceMin    string             `json:"price_min"`
	PriceMax    string             `json:"price_max"`
	Explanation []pricing.LineItem `json:"explanation"`
	Summary     []AnswerLine       `json:"summary"`
}

// Presenter receives the conversation output. Implementations deliver the
// events to a transport: a WebSocket connection, an HTTP response buffer,
// or a test recorder.
type Presenter interface {
	OnServiceMenu(choices []ServiceChoice)
	OnQuestion(q Question)
	OnValidationError(questionID, message string)
	OnProcessing(stage string)
	OnPrice(quote Quote)
	OnVisualization(r visual.Rendering)
	OnLeadSaved(leadID string)
	OnReset()
	OnError(message string)
}
