package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/ports"
	"github.com/aretw0/leadwizard/pkg/wizard"
	"github.com/google/uuid"
)

const (
	// DefaultApologyReply is returned when the reply generator fails.
	DefaultApologyReply = "Sorry, I'm having trouble answering right now. Please try again in a moment."

	// DefaultOutOfAreaReply is returned when the lead's ZIP code is not served.
	DefaultOutOfAreaReply = "Thanks for reaching out! Unfortunately we don't offer coverage in your ZIP code yet."
)

// Request is one inbound chat turn.
type Request struct {
	SessionID        string `json:"session_id,omitempty"`
	Message          string `json:"message"`
	Name             string `json:"name,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	ZipCode          string `json:"zip_code,omitempty"`
	QuoteType        string `json:"quote_type,omitempty"`
	CoverageCategory string `json:"coverage_category,omitempty"`
	VehicleYear      string `json:"vehicle_year,omitempty"`
	HomeType         string `json:"home_type,omitempty"`
}

func (r Request) lead() domain.Lead {
	return domain.Lead{
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		ZipCode:          r.ZipCode,
		QuoteType:        r.QuoteType,
		CoverageCategory: r.CoverageCategory,
		VehicleYear:      r.VehicleYear,
		HomeType:         r.HomeType,
	}
}

// answers returns the non-empty lead fields of the request keyed by answer key.
func (r Request) answers() map[string]string {
	all := map[string]string{
		"name":              r.Name,
		"email":             r.Email,
		"phone":             r.Phone,
		"zip_code":          r.ZipCode,
		"quote_type":        r.QuoteType,
		"coverage_category": r.CoverageCategory,
		"vehicle_year":      r.VehicleYear,
		"home_type":         r.HomeType,
	}
	for k, v := range all {
		if v == "" {
			delete(all, k)
		}
	}
	return all
}

// Response is what the widget renders.
type Response struct {
	SessionID string          `json:"session_id"`
	Text      string          `json:"text"`
	NodeID    string          `json:"node_id,omitempty"`
	Buttons   []domain.Button `json:"buttons,omitempty"`
	LeadID    int64           `json:"lead_id,omitempty"`
	Completed bool            `json:"completed,omitempty"`
	Degraded  bool            `json:"-"`
}

// Service runs a chat turn: wizard first, then lead capture and the free-text reply.
type Service struct {
	engine   *wizard.Engine
	sessions ports.SessionStore

	leads    ports.LeadRepository
	notifier ports.Notifier
	replies  ports.ReplyGenerator
	zips     ports.ZipChecker

	marker         string
	maxInputSize   int
	apologyReply   string
	outOfAreaReply string
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLeadRepository sets where captured leads are saved. Without one, leads are not persisted.
func WithLeadRepository(repo ports.LeadRepository) Option {
	return func(s *Service) { s.leads = repo }
}

// WithNotifier sets the side effect fired after a lead is saved.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithReplyGenerator sets the free-text responder.
func WithReplyGenerator(g ports.ReplyGenerator) Option {
	return func(s *Service) { s.replies = g }
}

// WithZipChecker sets the service-area check applied before saving a lead.
func WithZipChecker(z ports.ZipChecker) Option {
	return func(s *Service) { s.zips = z }
}

// WithSelectionMarker overrides the "__CLICKED__" selection prefix.
func WithSelectionMarker(marker string) Option {
	return func(s *Service) { s.marker = marker }
}

// WithMaxInputSize overrides the message size limit in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Service) { s.maxInputSize = n }
}

// WithApologyReply overrides the text used when the reply generator fails.
func WithApologyReply(text string) Option {
	return func(s *Service) { s.apologyReply = text }
}

// WithOutOfAreaReply overrides the text used for ineligible ZIP codes.
func WithOutOfAreaReply(text string) Option {
	return func(s *Service) { s.outOfAreaReply = text }
}

// WithLifecycleHooks registers observability hooks. The service fires OnLeadCaptured
// and OnStoreError; node hooks belong on the Engine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) { s.hooks = hooks }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a Service around a wizard engine and the session store it uses.
func New(engine *wizard.Engine, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		engine:         engine,
		sessions:       sessions,
		marker:         domain.DefaultSelectionMarker,
		maxInputSize:   DefaultMaxInputSize,
		apologyReply:   DefaultApologyReply,
		outOfAreaReply: DefaultOutOfAreaReply,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Marker returns the selection prefix the service recognizes.
func (s *Service) Marker() string {
	return s.marker
}

// Handle processes one chat turn. Only invalid input is reported as an error;
// downstream failures degrade to a best-effort reply.
func (s *Service) Handle(ctx context.Context, req Request) (Response, error) {
	message, err := SanitizeInput(req.Message, s.maxInputSize)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := s.logger.With("session_id", sessionID)

	result := s.engine.Handle(ctx, sessionID, domain.ParseEvent(message, s.marker))
	resp := Response{
		SessionID: sessionID,
		NodeID:    result.NodeID,
		Completed: result.Completed,
		Degraded:  result.Degraded,
	}

	if result.Prompt != nil {
		// Keep fields sent alongside a wizard step for the eventual lead.
		if !s.remember(ctx, logger, sessionID, req.answers()) {
			resp.Degraded = true
		}
		resp.NodeID = result.Prompt.NodeID
		resp.Text = result.Prompt.Text
		resp.Buttons = result.Prompt.Buttons
		return resp, nil
	}

	incoming := req.lead()
	incoming.RawMessage = message
	incoming.SessionID = sessionID

	if result.Completed || incoming.HasContact() {
		lead := s.assembleLead(ctx, logger, sessionID, incoming)

		if lead.ZipCode != "" && s.zips != nil && !s.zips.Eligible(ctx, lead.ZipCode) {
			logger.Info("lead outside service area", "zip", lead.ZipCode)
			s.leadEvent(ctx, sessionID, 0, domain.LeadOutOfArea)
			resp.Text = s.outOfAreaReply
			return resp, nil
		}

		resp.LeadID = s.capture(ctx, logger, sessionID, lead)
	}

	resp.Text = s.reply(ctx, logger, message)
	return resp, nil
}

// Reset drops the session so its next message starts the wizard over.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	d, ok := s.sessions.(ports.SessionDeleter)
	if !ok {
		return domain.ErrSessionDeleteUnsupported
	}
	if err := d.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	s.logger.Info("session reset", "session_id", sessionID)
	return nil
}

// remember saves request fields as session answers. It reports false on a store failure.
func (s *Service) remember(ctx context.Context, logger *slog.Logger, sessionID string, fields map[string]string) bool {
	ok := true
	for key, value := range fields {
		if err := s.sessions.SetField(ctx, sessionID, domain.AnswerField(key), value); err != nil {
			logger.Warn("could not save request field", "key", key, "err", err)
			s.storeError(ctx, sessionID, "set", err)
			ok = false
		}
	}
	return ok
}

// assembleLead merges session answers with the request fields; the request wins.
func (s *Service) assembleLead(ctx context.Context, logger *slog.Logger, sessionID string, incoming domain.Lead) domain.Lead {
	answers, err := s.sessions.GetAllAnswers(ctx, sessionID)
	if err != nil {
		logger.Warn("could not read session answers", "err", err)
		s.storeError(ctx, sessionID, "get_answers", err)
	}

	lead, err := domain.LeadFromAnswers(answers)
	if err != nil {
		logger.Warn("could not decode session answers", "err", err)
		lead = domain.Lead{}
	}
	lead.Merge(incoming)
	return lead
}

// capture saves the lead and fires notifications. It returns 0 when nothing was saved.
func (s *Service) capture(ctx context.Context, logger *slog.Logger, sessionID string, lead domain.Lead) int64 {
	if s.leads == nil {
		logger.Debug("no lead repository configured, skipping capture")
		return 0
	}

	id, err := s.leads.Save(ctx, &lead)
	if err != nil {
		logger.Error("failed to save lead", "err", err)
		s.leadEvent(ctx, sessionID, 0, domain.LeadFailed)
		return 0
	}
	lead.ID = id
	logger.Info("lead saved", "lead_id", id)
	s.leadEvent(ctx, sessionID, id, domain.LeadSaved)

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, lead); err != nil {
			logger.Error("lead notification failed", "lead_id", id, "err", err)
			s.leadEvent(ctx, sessionID, id, domain.LeadNotifyFail)
		} else {
			s.leadEvent(ctx, sessionID, id, domain.LeadNotified)
		}
	}
	return id
}

func (s *Service) reply(ctx context.Context, logger *slog.Logger, message string) string {
	if s.replies == nil {
		return s.apologyReply
	}
	text, err := s.replies.Reply(ctx, message)
	if err != nil || text == "" {
		if err == nil {
			err = errors.New("empty reply")
		}
		logger.Warn("reply generation failed", "err", err)
		return s.apologyReply
	}
	return text
}

func (s *Service) storeError(ctx context.Context, sessionID, op string, err error) {
	if s.hooks.OnStoreError == nil {
		return
	}
	s.hooks.OnStoreError(ctx, &domain.StoreErrorEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStoreError, SessionID: sessionID},
		Op:        op,
		Err:       err,
	})
}

func (s *Service) leadEvent(ctx context.Context, sessionID string, id int64, outcome string) {
	if s.hooks.OnLeadCaptured == nil {
		return
	}
	s.hooks.OnLeadCaptured(ctx, &domain.LeadEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventLeadCaptured, SessionID: sessionID},
		LeadID:    id,
		Outcome:   outcome,
	})
}
