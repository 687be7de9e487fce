package agent

import (
	"github.com/vaidya-ai/vaidya/model"
)

// Panel member names. The scheduling order is declared in NewAyurvedaPanel;
// these constants exist so other packages can reference payloads by agent.
const (
	DoshaAssessmentName = "dosha_assessment"
	MentalHealthName    = "mental_health"
	ClimateName         = "climate"
	DeficiencyName      = "deficiency"
	MealPlannerName     = "meal_planner"
	HerbalAdvisorName   = "herbal_advisor"
)

const jsonContract = `
Respond with exactly one JSON object and nothing else.
If you are missing a specific piece of information only the user can supply,
respond instead with {"needs_input": {"prompt": "<concise question>", "field_hint": "<snake_case_field>"}}.
Never answer with prose outside the JSON object.`

// NewDoshaAssessmentAgent assesses the user's primary dosha and current
// imbalances from moods, symptoms and meals.
func NewDoshaAssessmentAgent(llm model.Model) *SpecialistAgent {
	return NewSpecialistAgent(DoshaAssessmentName, llm, func(o *SpecialistOptions) {
		o.Description = "Assesses the primary dosha (Vata, Pitta, Kapha) and current imbalances"
		o.Instruction = NewInstructionFromText(`You are the dosha assessment specialist.
Assess the user's primary dosha (Vata, Pitta, Kapha) and any current imbalances
from the mood, symptom and meal history provided. If you lack necessary details
(sleep hours, digestion quality, body temperature), ask for the single most
important one. Produce {"dosha": "<dosha>", "imbalances": ["<imbalance>", ...]}.` + jsonContract)
	})
}

// NewMentalHealthAgent evaluates emotional state from the mood history.
func NewMentalHealthAgent(llm model.Model) *SpecialistAgent {
	return NewSpecialistAgent(MentalHealthName, llm, func(o *SpecialistOptions) {
		o.Description = "Evaluates emotional balance and stress from recent mood entries"
		o.Instruction = NewInstructionFromText(`You are the mental health specialist.
Evaluate the user's emotional balance and stress level from the recent mood
entries and the question asked. Produce {"state": "<summary>", "practices": ["<practice>", ...]}
with calming practices suited to the state.` + jsonContract)
	})
}

// NewClimateAgent adjusts recommendations for season and local climate. It
// requires the user's climate zone as a pre-declared fact and asks for it
// otherwise.
func NewClimateAgent(llm model.Model) *SpecialistAgent {
	return NewSpecialistAgent(ClimateName, llm, func(o *SpecialistOptions) {
		o.Description = "Factors season and local climate into the recommendation"
		o.RequiredFacts = []FactRequirement{
			{Field: "climate_zone", Prompt: "What climate do you currently live in (hot, temperate, cold, humid)?"},
		}
		o.Instruction = NewInstructionFromText(`You are the climate specialist.
Given the user's climate zone and the current season, describe how the
environment affects their balance. Produce {"climate": "<zone>", "effects": ["<effect>", ...], "adjustments": ["<adjustment>", ...]}.` + jsonContract)
	})
}

// NewDeficiencyAgent flags likely nutritional gaps from the meal history.
func NewDeficiencyAgent(llm model.Model) *SpecialistAgent {
	return NewSpecialistAgent(DeficiencyName, llm, func(o *SpecialistOptions) {
		o.Description = "Flags likely nutritional deficiencies from the meal history"
		o.Instruction = NewInstructionFromText(`You are the nutritional deficiency specialist.
Inspect the meal history for likely gaps (iron, B12, vitamin D, protein,
hydration). Produce {"deficiencies": ["<nutrient>", ...], "signals": ["<observation>", ...]}.` + jsonContract)
	})
}

// NewMealPlannerAgent builds a one-day plan from the other specialists' findings.
func NewMealPlannerAgent(llm model.Model) *SpecialistAgent {
	return NewSpecialistAgent(MealPlannerName, llm, func(o *SpecialistOptions) {
		o.Description = "Creates a one-day Ayurvedic meal plan from specialist findings"
		o.DependsOn = []string{DoshaAssessmentName, ClimateName, DeficiencyName}
		o.Instruction = NewInstructionFromText(`You are the meal planner specialist.
Create a one-day Ayurvedic meal plan using the dosha assessment, climate and
deficiency findings above. If caloric needs or dietary restrictions are unknown
and essential, ask for them. Produce {"breakfast": "...", "lunch": "...", "dinner": "..."}.` + jsonContract)
	})
}

// NewHerbalAdvisorAgent recommends herbs and preparations consistent with the
// dosha assessment and mental state.
func NewHerbalAdvisorAgent(llm model.Model) *SpecialistAgent {
	return NewSpecialistAgent(HerbalAdvisorName, llm, func(o *SpecialistOptions) {
		o.Description = "Recommends herbs and preparations consistent with the assessment"
		o.DependsOn = []string{DoshaAssessmentName, MentalHealthName}
		o.Instruction = NewInstructionFromText(`You are the herbal advisor specialist.
Recommend herbs and preparations consistent with the dosha assessment and the
mental health findings above, citing the retrieved passages where relevant.
Produce {"herbs": [{"name": "...", "preparation": "...", "reason": "..."}, ...]}.` + jsonContract)
	})
}

// NewAyurvedaPanel declares the full fixed panel in scheduling order:
// context-gathering specialists first, specialists that consume prior outputs
// last.
func NewAyurvedaPanel(llm model.Model) *Panel {
	return MustNewPanel(
		NewDoshaAssessmentAgent(llm),
		NewMentalHealthAgent(llm),
		NewClimateAgent(llm),
		NewDeficiencyAgent(llm),
		NewMealPlannerAgent(llm),
		NewHerbalAdvisorAgent(llm),
	)
}
