package rules

import (
	"estatecore/internal/models"

	"go.uber.org/zap"
)

// Rule is a condition/action pair. Rules are immutable after load and
// evaluated in declaration order; the first matching rule wins.
type Rule struct {
	ID          string
	Description string
	Condition   func(models.Event) bool
	Action      func(models.Event) models.Decision
}

// Engine evaluates events against an ordered rule set.
type Engine struct {
	rules []Rule
	log   *zap.Logger
}

func NewEngine(rules []Rule, log *zap.Logger) *Engine {
	return &Engine{rules: rules, log: log}
}

// Evaluate returns the decision of the first rule whose condition matches,
// or nil when no rule matches. A rule that panics in its condition or
// action is logged and skipped; it never produces a decision and never
// blocks the rules after it.
func (e *Engine) Evaluate(event models.Event) models.Decision {
	for _, rule := range e.rules {
		decision, matched := e.tryRule(rule, event)
		if matched {
			e.log.Debug("rule matched",
				zap.String("rule_id", rule.ID),
				zap.String("device_id", event.DeviceID),
				zap.String("event_type", event.EventType))
			return decision
		}
	}
	return nil
}

func (e *Engine) tryRule(rule Rule, event models.Event) (decision models.Decision, matched bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("rule evaluation fault",
				zap.String("rule_id", rule.ID), zap.Any("panic", r))
			decision, matched = nil, false
		}
	}()

	if !rule.Condition(event) {
		return nil, false
	}
	return rule.Action(event), true
}
