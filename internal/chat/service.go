// Package chat orchestrates the quote conversation: service selection,
// the question walk, pricing, the preview, and the final lead save.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/homequote/homequote/internal/catalog"
	"github.com/homequote/homequote/internal/flow"
	"github.com/homequote/homequote/internal/leads"
	"github.com/homequote/homequote/internal/observability/metrics"
	"github.com/homequote/homequote/internal/pricing"
	"github.com/homequote/homequote/internal/session"
	"github.com/homequote/homequote/internal/visual"
	"github.com/homequote/homequote/pkg/logging"
)

// Final actions a visitor can take once a price is on screen.
const (
	ActionSaveLead = "save_lead"
	ActionRestart  = "restart"
)

// Config tunes the conversation pacing.
type Config struct {
	// ProcessingDelay is the artificial pause before the price appears.
	ProcessingDelay time.Duration
	// VisualizationDelay is the pause before the preview follows the price.
	VisualizationDelay time.Duration
}

// Service drives one conversation per session ID.
type Service struct {
	catalog  *catalog.Catalog
	engine   *flow.Engine
	sessions session.Store
	builder  *leads.Builder
	leadRepo leads.Repository
	metrics  *metrics.EstimatorMetrics
	logger   *logging.Logger
	cfg      Config
}

// NewService wires the conversation orchestrator.
func NewService(
	c *catalog.Catalog,
	sessions session.Store,
	leadRepo leads.Repository,
	m *metrics.EstimatorMetrics,
	logger *logging.Logger,
	cfg Config,
) *Service {
	if c == nil {
		panic("chat: catalog cannot be nil")
	}
	if sessions == nil {
		panic("chat: session store cannot be nil")
	}
	if leadRepo == nil {
		panic("chat: lead repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		catalog:  c,
		engine:   flow.NewEngine(c),
		sessions: sessions,
		builder:  leads.NewBuilder(c),
		leadRepo: leadRepo,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
	}
}

// Start resumes an existing session or begins a new one, presenting
// whatever the visitor should see next.
func (s *Service) Start(ctx context.Context, sessionID string, p Presenter) error {
	st := s.load(ctx, sessionID)
	s.present(ctx, st, p)
	return nil
}

// SelectService begins the question walk for the chosen service. Choosing
// a service discards any in-progress walk.
func (s *Service) SelectService(ctx context.Context, sessionID, serviceName string, p Presenter) error {
	key := catalog.ServiceKey(serviceName)
	svc, ok := s.catalog.Service(key)
	if !ok {
		s.metrics.ObserveError("unknown_service")
		p.OnError(fmt.Sprintf("Unknown service %q.", serviceName))
		return nil
	}

	st := s.load(ctx, sessionID)
	st.StartFlow(key)
	s.persist(ctx, st)
	s.record(ctx, sessionID, "user", "Requested a quote for "+svc.DisplayName)

	s.presentQuestion(st, p)
	return nil
}

// SubmitAnswer feeds one raw answer into the walk. A rejected answer
// re-presents the validation message; an accepted one advances to the
// next question or, when the walk completes, to the price.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, questionID, raw string, p Presenter) error {
	started := time.Now()
	st := s.load(ctx, sessionID)
	if st.Phase != session.PhaseAnswering || st.Flow == nil {
		s.metrics.ObserveError("no_flow")
		p.OnError("Choose a service before answering.")
		return nil
	}

	res, err := s.engine.Accept(st.Flow, questionID, raw)
	if err != nil {
		if errors.Is(err, flow.ErrWrongQuestion) {
			s.metrics.ObserveError("wrong_question")
			p.OnError("That question is not the one currently being asked.")
			return nil
		}
		return fmt.Errorf("chat: accept answer: %w", err)
	}
	if res.ValidationErr != nil {
		s.metrics.ObserveError("validation")
		p.OnValidationError(res.ValidationErr.QuestionID, res.ValidationErr.Message)
		return nil
	}

	st.Touch()
	s.persist(ctx, st)
	s.record(ctx, sessionID, "user", flow.FormatAnswer(res.Value, res.Question))
	s.metrics.ObserveAnswerLatency(string(st.Flow.Service), time.Since(started).Seconds())

	done, err := s.engine.Completed(st.Flow)
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if !done {
		s.presentQuestion(st, p)
		return nil
	}
	return s.finishWalk(ctx, st, p)
}

// FinalAction handles the buttons shown alongside the price.
func (s *Service) FinalAction(ctx context.Context, sessionID, action string, p Presenter) error {
	st := s.load(ctx, sessionID)

	switch action {
	case ActionSaveLead:
		return s.saveLead(ctx, st, p)
	case ActionRestart:
		st.Reset()
		s.persist(ctx, st)
		p.OnReset()
		p.OnServiceMenu(s.menu())
		return nil
	default:
		s.metrics.ObserveError("unsupported_action")
		p.OnError(fmt.Sprintf("Unsupported action %q.", action))
		return nil
	}
}

func (s *Service) finishWalk(ctx context.Context, st *session.State, p Presenter) error {
	svc, ok := s.catalog.Service(st.Flow.Service)
	if !ok {
		return fmt.Errorf("chat: %w: %s", catalog.ErrUnknownService, st.Flow.Service)
	}

	p.OnProcessing("pricing")
	s.pause(ctx, s.cfg.ProcessingDelay)

	result, err := pricing.Compute(svc, st.Flow.Answers)
	if err != nil {
		s.metrics.ObserveError("pricing")
		s.logger.Error("chat: pricing failed", "error", err, "service", svc.Key)
		p.OnError("We could not compute a price for those answers.")
		return nil
	}

	st.LastQuote = result
	st.Phase = session.PhaseQuoted
	st.Touch()
	s.persist(ctx, st)
	s.metrics.ObserveEstimate(string(svc.Key), string(result.Clamped))

	quote := s.buildQuote(svc, st.Flow.Answers, result)
	s.record(ctx, st.ID, "bot", "Estimated price "+quote.Price)
	p.OnPrice(quote)

	p.OnProcessing("visualization")
	s.pause(ctx, s.cfg.VisualizationDelay)
	p.OnVisualization(visual.Simulate(svc.Key, st.Flow.Answers))
	return nil
}

func (s *Service) saveLead(ctx context.Context, st *session.State, p Presenter) error {
	if st.Phase != session.PhaseQuoted || st.Flow == nil {
		s.metrics.ObserveError("no_quote")
		p.OnError("There is no quote to save yet.")
		return nil
	}

	lead, err := s.builder.Build(st.ID, st.Flow)
	if err != nil {
		s.metrics.ObserveError("lead_build")
		s.logger.Error("chat: lead build failed", "error", err, "session_id", st.ID)
		p.OnError("We could not save your request.")
		return nil
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		s.metrics.ObserveError("lead_save")
		s.logger.Error("chat: lead save failed", "error", err, "lead_id", lead.ID)
		p.OnError("We could not save your request. Please try again.")
		return nil
	}

	s.metrics.ObserveLeadSaved(string(lead.ServiceKey))
	s.logger.Info("chat: lead saved", "lead_id", lead.ID, "service", lead.ServiceKey)
	s.record(ctx, st.ID, "bot", "Lead saved, a specialist will reach out")
	p.OnLeadSaved(lead.ID)

	st.Reset()
	s.persist(ctx, st)
	p.OnReset()
	p.OnServiceMenu(s.menu())
	return nil
}

// present shows whatever matches the session's phase, so a reconnecting
// visitor lands exactly where they left off.
func (s *Service) present(ctx context.Context, st *session.State, p Presenter) {
	switch st.Phase {
	case session.PhaseAnswering:
		s.presentQuestion(st, p)
	case session.PhaseQuoted:
		if svc, ok := s.catalog.Service(st.Flow.Service); ok && st.LastQuote != nil {
			p.OnPrice(s.buildQuote(svc, st.Flow.Answers, st.LastQuote))
			return
		}
		st.Reset()
		s.persist(ctx, st)
		p.OnServiceMenu(s.menu())
	default:
		p.OnServiceMenu(s.menu())
	}
}

func (s *Service) presentQuestion(st *session.State, p Presenter) {
	next, err := s.engine.Next(st.Flow)
	if err != nil || next.Done {
		if err != nil {
			s.logger.Error("chat: next question failed", "error", err, "session_id", st.ID)
		}
		p.OnError("The conversation is in an unexpected state. Please restart.")
		return
	}
	q := next.Question
	p.OnQuestion(Question{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Type:    q.Type,
		Unit:    q.Unit,
		Options: next.Options,
		Default: q.Default,
	})
}

func (s *Service) buildQuote(svc *catalog.Service, answers flow.Answers, result *pricing.Result) Quote {
	summary := make([]AnswerLine, 0, len(svc.Questions))
	for i := range svc.Questions {
		q := &svc.Questions[i]
		if !answers.Has(q.ID) {
			continue
		}
		summary = append(summary, AnswerLine{
			Prompt: q.Prompt,
			Answer: flow.FormatAnswer(answers[q.ID], q),
		})
	}
	return Quote{
		Service:     svc.Key,
		ServiceName: svc.DisplayName,
		Price:       result.SuggestedPrice.StringFixed(2),
		PriceMin:    result.Range.Min.StringFixed(2),
		PriceMax:    result.Range.Max.StringFixed(2),
		Explanation: result.Explanation,
		Summary:     summary,
	}
}

func (s *Service) menu() []ServiceChoice {
	services := s.catalog.Services()
	choices := make([]ServiceChoice, 0, len(services))
	for _, svc := range services {
		choices = append(choices, ServiceChoice{Key: svc.Key, Label: svc.DisplayName})
	}
	return choices
}

// load fetches the session or starts a fresh one. A stored state that no
// longer fits the catalog is discarded rather than trusted.
func (s *Service) load(ctx context.Context, sessionID string) *session.State {
	st, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.logger.Warn("chat: session load failed, starting fresh", "error", err, "session_id", sessionID)
		}
		return session.New(sessionID)
	}
	if err := st.Check(s.catalog); err != nil {
		s.logger.Warn("chat: discarding inconsistent session", "error", err, "session_id", sessionID)
		st.Reset()
	}
	return st
}

// persist writes the full session document. Failures are logged and the
// conversation continues; the next successful write covers the gap since
// the whole state is saved every time.
func (s *Service) persist(ctx context.Context, st *session.State) {
	if err := s.sessions.Save(ctx, st); err != nil {
		s.logger.Warn("chat: session save failed", "error", err, "session_id", st.ID)
	}
}

func (s *Service) record(ctx context.Context, sessionID, role, text string) {
	msg := session.Message{Role: role, Text: text, At: time.Now().UTC()}
	if err := s.sessions.AppendTranscript(ctx, sessionID, msg); err != nil {
		s.logger.Warn("chat: transcript append failed", "error", err, "session_id", sessionID)
	}
}

func (s *Service) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
