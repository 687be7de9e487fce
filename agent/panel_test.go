package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/model"
)

func TestNewPanel_OrderPreserved(t *testing.T) {
	llm := model.NewMockModel("test")
	p, err := NewPanel(
		NewSpecialistAgent("a", llm),
		NewSpecialistAgent("b", llm),
		NewSpecialistAgent("c", llm, func(o *SpecialistOptions) { o.DependsOn = []string{"a", "b"} }),
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, p.Names())
	assert.Equal(t, 3, p.Size())

	got, ok := p.Get("b")
	require.True(t, ok)
	assert.Equal(t, "b", got.Name())

	_, ok = p.Get("missing")
	assert.False(t, ok)
}

func TestNewPanel_RejectsEmpty(t *testing.T) {
	_, err := NewPanel()
	assert.Error(t, err)
}

func TestNewPanel_RejectsDuplicateNames(t *testing.T) {
	llm := model.NewMockModel("test")
	_, err := NewPanel(NewSpecialistAgent("a", llm), NewSpecialistAgent("a", llm))
	assert.ErrorContains(t, err, "duplicate")
}

func TestNewPanel_RejectsUnknownDependency(t *testing.T) {
	llm := model.NewMockModel("test")
	_, err := NewPanel(
		NewSpecialistAgent("a", llm, func(o *SpecialistOptions) { o.DependsOn = []string{"ghost"} }),
	)
	assert.ErrorContains(t, err, "ghost")
}

func TestNewPanel_AllowsForwardDependency(t *testing.T) {
	// A dependency on a later member is valid; the scheduler defers the
	// dependent to a later round.
	llm := model.NewMockModel("test")
	_, err := NewPanel(
		NewSpecialistAgent("late", llm, func(o *SpecialistOptions) { o.DependsOn = []string{"early"} }),
		NewSpecialistAgent("early", llm),
	)
	assert.NoError(t, err)
}

func TestNewAyurvedaPanel_FullPanel(t *testing.T) {
	p := NewAyurvedaPanel(model.NewMockModel("test"))

	assert.Equal(t, []string{
		DoshaAssessmentName,
		MentalHealthName,
		ClimateName,
		DeficiencyName,
		MealPlannerName,
		HerbalAdvisorName,
	}, p.Names())

	planner, ok := p.Get(MealPlannerName)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{DoshaAssessmentName, ClimateName, DeficiencyName}, planner.DependsOn())
}

func TestMustNewPanel_PanicsOnInvalid(t *testing.T) {
	llm := model.NewMockModel("test")
	assert.Panics(t, func() {
		MustNewPanel(NewSpecialistAgent("a", llm), NewSpecialistAgent("a", llm))
	})
}

func TestInstruction_StaticAndProvider(t *testing.T) {
	static := NewInstructionFromText("hello")
	assert.True(t, static.IsStatic())
	text, err := static.Resolve(newTurnContext(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	dynamic := NewInstructionFromFunc(func(tc *core.TurnContext) (string, error) {
		return "for " + tc.Query, nil
	})
	assert.False(t, dynamic.IsStatic())
	text, err = dynamic.Resolve(newTurnContext(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "for what should I eat?", text)
}
