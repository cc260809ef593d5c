// Package assistant runs the chat assistant: it plans goals typed directly
// by the user, asks the model otherwise, and turns the model's tool calls
// into catalog matches or savings plans.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"zaman/internal/catalog"
	"zaman/internal/core"
	"zaman/internal/goals"
	"zaman/internal/llm"
	"zaman/internal/log"
)

// UpstreamMessage is shown to the user whenever the model is unreachable.
const UpstreamMessage = "Сервис ассистента временно недоступен. Попробуйте позже."

const (
	maxHistory   = 20
	ragTopK      = 3
	clarifyGoal  = "На какой срок вы хотите накопить %s? Укажите количество месяцев или дату, например «за 12 месяцев» или «к 2026-12»."
	planTemplate = "Чтобы накопить %s за %d мес., откладывайте %s в месяц."
	matchFound   = "Подобрала для вас продукты: %d шт. Откройте каталог, чтобы посмотреть подробнее."
	matchNone    = "Подходящих продуктов не нашлось. Попробуйте изменить сумму или тип продукта."
)

var (
	ErrUpstream     = errors.New(UpstreamMessage)
	ErrEmptyMessage = errors.New("no user message")
)

// Catalog is what the assistant needs from the product catalog.
type Catalog interface {
	Match(ctx context.Context, f catalog.Filter) ([]core.Product, error)
}

// Reply is the assistant's answer. Text is always set; the other fields
// describe what a tool call produced.
type Reply struct {
	Text               string          `json:"text"`
	Tool               string          `json:"tool,omitempty"`
	RedirectURL        string          `json:"redirectUrl,omitempty"`
	Products           []core.Product  `json:"products,omitempty"`
	Goal               *core.Goal      `json:"goal,omitempty"`
	Plan               *core.GoalPlan  `json:"plan,omitempty"`
	NeedsClarification bool            `json:"needsClarification,omitempty"`
	UI                 json.RawMessage `json:"ui,omitempty"`
}

type Service struct {
	llm       llm.Client
	catalog   Catalog
	retriever Retriever
	now       func() time.Time
	logger    *log.Logger
	events    *log.StructuredLogger
}

// NewService wires the assistant. retriever may be nil to disable product
// context.
func NewService(client llm.Client, cat Catalog, retriever Retriever, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{
		llm:       client,
		catalog:   cat,
		retriever: retriever,
		now:       time.Now,
		logger:    logger.WithComponent(log.ComponentAssistant),
		events:    log.NewStructuredLogger(logger),
	}
}

// Chat answers the conversation in history. Only user and assistant turns
// are accepted from callers; the system prompt is added here.
func (s *Service) Chat(ctx context.Context, history []llm.Message) (Reply, error) {
	history = sanitize(history)
	last := lastUserMessage(history)
	if last == "" {
		return Reply{}, ErrEmptyMessage
	}

	if g, ok := goals.Extract(last); ok && g.Amount > 0 && g.HasHorizon() {
		return s.planReply(ctx, ToolPlanGoal, g), nil
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: SystemPrompt})
	if ctxMsg := s.retrieve(ctx, last); ctxMsg != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: ctxMsg})
	}
	messages = append(messages, history...)

	answer, err := s.llm.Chat(ctx, messages)
	if err != nil {
		s.logger.ErrorContext(ctx, "Chat completion failed", log.FieldError, err)
		return Reply{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	call, ok := ParseToolCall(answer)
	if !ok {
		return Reply{Text: strings.TrimSpace(answer)}, nil
	}
	return s.dispatch(ctx, call), nil
}

// dispatch executes a decoded tool call.
func (s *Service) dispatch(ctx context.Context, call ToolCall) Reply {
	switch c := call.(type) {
	case MatchProduct:
		s.events.LogToolCall(ctx, c.ToolName(), c.MinAmount, 0)
		return s.matchReply(ctx, c)
	case PlanGoal:
		s.events.LogToolCall(ctx, c.ToolName(), c.Amount, c.Months)
		return s.planReply(ctx, c.ToolName(), c.Goal())
	default:
		panic(fmt.Sprintf("assistant: unhandled tool call %T", call))
	}
}

func (s *Service) matchReply(ctx context.Context, c MatchProduct) Reply {
	f := c.Filter()
	reply := Reply{Tool: ToolMatchProduct, RedirectURL: catalog.RedirectURL(f), UI: c.UI}

	products, err := s.catalog.Match(ctx, f)
	if err != nil {
		s.logger.WarnContext(ctx, "Catalog match failed", log.FieldError, err)
	}
	reply.Products = products
	if len(products) == 0 {
		reply.Text = matchNone
	} else {
		reply.Text = fmt.Sprintf(matchFound, len(products))
	}
	return reply
}

func (s *Service) planReply(ctx context.Context, tool string, g core.Goal) Reply {
	reply := Reply{Tool: tool, Goal: &g}
	plan, err := goals.Plan(g, s.now())
	switch {
	case errors.Is(err, goals.ErrNeedsClarification):
		reply.NeedsClarification = true
		reply.Text = fmt.Sprintf(clarifyGoal, core.FormatTenge(g.Amount))
	case err != nil:
		s.logger.WarnContext(ctx, "Goal plan rejected", log.FieldError, err, log.FieldAmount, g.Amount)
		reply.NeedsClarification = true
		reply.Text = fmt.Sprintf(clarifyGoal, core.FormatTenge(g.Amount))
	default:
		reply.Plan = &plan
		reply.Text = fmt.Sprintf(planTemplate, core.FormatTenge(g.Amount), plan.Months, core.FormatTenge(plan.MonthlyPlan))
	}
	return reply
}

// retrieve builds the product context message. Failures only cost context.
func (s *Service) retrieve(ctx context.Context, question string) string {
	if s.retriever == nil {
		return ""
	}
	products, err := s.retriever.Retrieve(ctx, question, ragTopK)
	if err != nil {
		s.logger.WarnContext(ctx, "Product retrieval failed, answering without context",
			log.FieldOperation, log.OpRetrieve,
			log.FieldError, err)
		return ""
	}
	if len(products) == 0 {
		return ""
	}
	return contextMessage(products)
}

func sanitize(history []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}
	if len(out) > maxHistory {
		out = out[len(out)-maxHistory:]
	}
	return out
}

func lastUserMessage(history []llm.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == llm.RoleUser {
			return strings.TrimSpace(history[i].Content)
		}
	}
	return ""
}
