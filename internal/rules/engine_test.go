package rules

import (
	"testing"

	"estatecore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func commandRule(id, device string) Rule {
	return Rule{
		ID: id,
		Condition: func(models.Event) bool { return true },
		Action: func(models.Event) models.Decision {
			return models.DeviceCommand{DeviceID: device}
		},
	}
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	engine := NewEngine([]Rule{
		commandRule("first", "dev-a"),
		commandRule("second", "dev-b"),
	}, zap.NewNop())

	decision := engine.Evaluate(models.Event{EventType: "anything"})

	require.NotNil(t, decision)
	cmd, ok := decision.(models.DeviceCommand)
	require.True(t, ok)
	assert.Equal(t, "dev-a", cmd.DeviceID)
}

func TestEvaluateNoMatchReturnsNil(t *testing.T) {
	never := Rule{
		ID:        "never",
		Condition: func(models.Event) bool { return false },
		Action:    func(models.Event) models.Decision { return models.DeviceCommand{} },
	}
	engine := NewEngine([]Rule{never}, zap.NewNop())

	assert.Nil(t, engine.Evaluate(models.Event{EventType: "anything"}))
}

func TestEvaluatePanickingConditionDoesNotBlockLaterRules(t *testing.T) {
	panicking := Rule{
		ID:        "broken",
		Condition: func(models.Event) bool { panic("bad rule") },
		Action:    func(models.Event) models.Decision { return models.DeviceCommand{DeviceID: "never"} },
	}
	engine := NewEngine([]Rule{
		panicking,
		commandRule("healthy", "dev-ok"),
	}, zap.NewNop())

	decision := engine.Evaluate(models.Event{EventType: "anything"})

	require.NotNil(t, decision)
	cmd, ok := decision.(models.DeviceCommand)
	require.True(t, ok)
	assert.Equal(t, "dev-ok", cmd.DeviceID)
}

func TestEvaluatePanickingActionProducesNoDecision(t *testing.T) {
	badAction := Rule{
		ID:        "bad-action",
		Condition: func(models.Event) bool { return true },
		Action:    func(models.Event) models.Decision { panic("action blew up") },
	}
	engine := NewEngine([]Rule{badAction}, zap.NewNop())

	assert.Nil(t, engine.Evaluate(models.Event{EventType: "anything"}))
}
