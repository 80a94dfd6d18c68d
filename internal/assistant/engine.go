package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/internal/classifier"
	"github.com/themobileprof/momvitals-be/internal/fallback"
	"github.com/themobileprof/momvitals-be/internal/memory"
	"github.com/themobileprof/momvitals-be/internal/privacy"
	"github.com/themobileprof/momvitals-be/internal/profile"
	"github.com/themobileprof/momvitals-be/internal/reminder"
	"github.com/themobileprof/momvitals-be/internal/risk"
	"github.com/themobileprof/momvitals-be/internal/vitals"
)

// Channel is one of the two chat rooms
type Channel string

const (
	ChannelDoctor Channel = "doctor"
	ChannelAI     Channel = "ai"
)

// ParseChannel validates a channel name from a URL
func ParseChannel(s string) (Channel, bool) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelDoctor:
		return ChannelDoctor, true
	case ChannelAI:
		return ChannelAI, true
	default:
		return "", false
	}
}

// Reply kinds
const (
	KindGreeting  = "greeting"
	KindGratitude = "gratitude"
	KindVitals    = "vitals"
	KindDanger    = "danger_sign"
	KindDocument  = "document"
	KindCanned    = "canned"
	KindAnswer    = "answer"
	KindFallback  = "fallback"
)

var ErrEmptyMessage = errors.New("message is empty")

// Request is one user message
type Request struct {
	UserID   string
	Channel  Channel
	Message  string
	Document string // uploaded file name, if any
}

// Reply is the assistant's answer to one message
type Reply struct {
	Channel    Channel              `json:"channel"`
	Sender     string               `json:"sender"`
	Kind       string               `json:"kind"`
	Intent     string               `json:"intent"`
	Content    string               `json:"content"`
	Action     string               `json:"action,omitempty"`
	Signs      []Sign               `json:"danger_signs,omitempty"`
	Assessment *risk.Assessment     `json:"assessment,omitempty"`
	Reminder   *reminder.Suggestion `json:"reminder_suggestion,omitempty"`
}

// ClassifierInterface is the intent classifier used by the engine
type ClassifierInterface interface {
	Classify(input string) classifier.ClassifierResult
}

// Answerer answers free-form questions on the AI channel
type Answerer interface {
	Answer(ctx context.Context, question string, week *int) (string, error)
}

// Engine produces chat replies independent of transport
type Engine struct {
	classifier ClassifierInterface
	answerer   Answerer
	extractor  *vitals.Extractor
	detector   *DangerDetector
	suggester  *reminder.Suggester
	history    *memory.History
	risk       *risk.Engine
	profiles   profile.Cache
	logger     *zap.Logger
	now        func() time.Time
}

// NewEngine creates a chat engine. profiles may be nil, in which case vitals
// found in chat are assessed on their own and not remembered.
func NewEngine(cls ClassifierInterface, riskEngine *risk.Engine, profiles profile.Cache, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		classifier: cls,
		extractor:  vitals.NewExtractor(),
		detector:   NewDangerDetector(),
		suggester:  reminder.NewSuggester(),
		risk:       riskEngine,
		profiles:   profiles,
		logger:     logger,
		now:        time.Now,
	}
}

// WithAnswerer lets the AI channel answer questions through a model
func (e *Engine) WithAnswerer(a Answerer) *Engine {
	e.answerer = a
	return e
}

// WithHistory records every exchange in h
func (e *Engine) WithHistory(h *memory.History) *Engine {
	e.history = h
	return e
}

// Greeting returns the opening line of a channel
func Greeting(ch Channel) Reply {
	return Reply{Channel: ch, Sender: sender(ch), Kind: KindGreeting, Intent: string(classifier.IntentSmallTalk), Content: greetings[ch]}
}

// ProcessMessage answers one message
func (e *Engine) ProcessMessage(ctx context.Context, req Request) (Reply, error) {
	if _, ok := ParseChannel(string(req.Channel)); !ok {
		return Reply{}, fmt.Errorf("unknown channel %q", req.Channel)
	}

	message := strings.TrimSpace(req.Message)
	if req.Document != "" {
		r := e.reply(req.Channel, KindDocument, classifier.IntentDocument, documentAcks[req.Channel])
		e.remember(req, "["+req.Document+"]", r)
		return r, nil
	}
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	result := e.classifier.Classify(message)
	r, err := e.respond(ctx, req, message, result)
	if err != nil {
		return Reply{}, err
	}

	if s, ok := e.suggester.Suggest(result.Intent, message, e.now()); ok {
		r.Reminder = &s
	}
	e.remember(req, message, r)
	return r, nil
}

// History returns the remembered conversation, oldest first
func (e *Engine) History(userID string, ch Channel) []memory.Message {
	if e.history == nil {
		return []memory.Message{}
	}
	return e.history.Recent(userID, string(ch))
}

// ClearHistory forgets a conversation
func (e *Engine) ClearHistory(userID string, ch Channel) {
	if e.history != nil {
		e.history.Clear(userID, string(ch))
	}
}

func (e *Engine) remember(req Request, message string, r Reply) {
	if e.history == nil || req.UserID == "" {
		return
	}
	now := e.now()
	e.history.Add(req.UserID, string(req.Channel), memory.Message{Role: "user", Content: message, Timestamp: now})
	e.history.Add(req.UserID, string(req.Channel), memory.Message{Role: r.Sender, Content: r.Content, Kind: r.Kind, Timestamp: now})
}

func (e *Engine) respond(ctx context.Context, req Request, message string, result classifier.ClassifierResult) (Reply, error) {
	e.logger.Debug("chat message classified",
		zap.String("user_id", req.UserID),
		zap.String("channel", string(req.Channel)),
		zap.String("intent", string(result.Intent)),
		zap.Float64("confidence", result.Confidence),
		zap.String("message", privacy.SanitizeForLogging(message)),
	)

	signs := e.detector.Detect(message)

	if found, ok := e.extractor.Extract(message); ok {
		return e.vitalsReply(ctx, req, found, signs)
	}

	if len(signs) > 0 {
		return e.dangerReply(req.Channel, signs), nil
	}

	switch result.Intent {
	case classifier.IntentGratitude:
		return e.reply(req.Channel, KindGratitude, result.Intent, gratitudeReplies[req.Channel]), nil
	case classifier.IntentSmallTalk:
		return Greeting(req.Channel), nil
	case classifier.IntentDocument:
		return e.reply(req.Channel, KindDocument, result.Intent, documentAcks[req.Channel]), nil
	case classifier.IntentPregnancyQ, classifier.IntentUnclear:
		if req.Channel == ChannelAI && e.answerer != nil {
			return e.answerReply(ctx, req, message, result.Intent), nil
		}
		return e.reply(req.Channel, KindCanned, result.Intent, cannedReplies[req.Channel]), nil
	default:
		return e.reply(req.Channel, KindCanned, result.Intent, cannedReplies[req.Channel]), nil
	}
}

// vitalsReply merges readings found in chat over the stored profile and
// answers with the fresh assessment's narrative
func (e *Engine) vitalsReply(ctx context.Context, req Request, found risk.Vitals, signs []Sign) (Reply, error) {
	p := profile.Profile{UserID: req.UserID}
	if e.profiles != nil && req.UserID != "" {
		cached, ok, err := e.profiles.Get(ctx, req.UserID)
		if err != nil {
			e.logger.Warn("profile lookup failed", zap.String("user_id", req.UserID), zap.Error(err))
		} else if ok {
			p = cached
		}
	}

	merged := vitals.WithDerivedBMI(p.Vitals.Merge(found))
	a := e.risk.AssessRequest(risk.Request{Vitals: merged, PriorScore: p.PriorScore()})

	if e.profiles != nil && req.UserID != "" {
		p.Apply(merged, a, e.now())
		if err := e.profiles.Put(ctx, p); err != nil {
			e.logger.Warn("profile update failed", zap.String("user_id", req.UserID), zap.Error(err))
		}
	}

	lines := append([]string{readingsLine(found)}, a.Narrative...)
	if a.Emergency {
		lines = append(lines, a.Guidance...)
	}
	for _, s := range signs {
		lines = append(lines, s.Advice)
	}

	r := e.reply(req.Channel, KindVitals, classifier.IntentVitals, strings.Join(lines, " "))
	r.Assessment = &a
	r.Signs = signs
	if a.Emergency || Urgent(signs) {
		r.Action = fallback.ActionEmergency
	}
	return r, nil
}

func (e *Engine) answerReply(ctx context.Context, req Request, question string, intent classifier.Intent) Reply {
	var week *int
	if e.profiles != nil && req.UserID != "" {
		if p, ok, err := e.profiles.Get(ctx, req.UserID); err == nil && ok {
			week = p.Vitals.PregnancyWeek
		}
	}

	answer, err := e.answerer.Answer(ctx, question, week)
	if err != nil {
		e.logger.Warn("model answer failed, using fallback", zap.String("user_id", req.UserID), zap.Error(err))
		fb := fallback.GetFallbackResponse(intent)
		r := e.reply(req.Channel, KindFallback, intent, fb.Content)
		r.Action = fb.Action
		return r
	}
	return e.reply(req.Channel, KindAnswer, intent, answer)
}

func (e *Engine) dangerReply(ch Channel, signs []Sign) Reply {
	lines := []string{dangerPreface}
	for _, s := range signs {
		lines = append(lines, s.Advice)
	}

	urgent := Urgent(signs)
	if urgent {
		lines = append(lines, urgentAdvice)
	} else {
		lines = append(lines, routineAdvice)
	}

	r := e.reply(ch, KindDanger, classifier.IntentSymptom, strings.Join(lines, " "))
	r.Signs = signs
	if urgent {
		r.Action = fallback.ActionEmergency
	}
	return r
}

func (e *Engine) reply(ch Channel, kind string, intent classifier.Intent, content string) Reply {
	return Reply{Channel: ch, Sender: sender(ch), Kind: kind, Intent: string(intent), Content: content}
}

func sender(ch Channel) string {
	return string(ch)
}

func readingsLine(v risk.Vitals) string {
	parts := make([]string, 0, 4)
	if v.BloodSugarMgDl != nil {
		parts = append(parts, "sugar "+vitals.FormatReading(v.BloodSugarMgDl)+" mg/dL")
	}
	if v.SystolicMmHg != nil {
		parts = append(parts, "BP "+vitals.FormatReading(v.SystolicMmHg)+"/"+vitals.FormatReading(v.DiastolicMmHg)+" mmHg")
	}
	if v.BMI != nil {
		parts = append(parts, "BMI "+vitals.FormatReading(v.BMI))
	}
	if v.PregnancyWeek != nil {
		parts = append(parts, fmt.Sprintf("week %d", *v.PregnancyWeek))
	}
	if len(parts) == 0 {
		return "Noted your details."
	}
	return "Noted: " + strings.Join(parts, ", ") + "."
}
