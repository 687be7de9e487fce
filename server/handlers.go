package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/orchestrator"
)

type recommendRequest struct {
	UserEmail string            `json:"user_email"`
	Message   string            `json:"message"`
	Facts     map[string]string `json:"facts,omitempty"`
}

type resumeRequest struct {
	SessionID string `json:"session_id"`
	FieldHint string `json:"field_hint"`
	Value     string `json:"value"`
}

type moodRequest struct {
	UserEmail string `json:"user_email"`
	Mood      string `json:"mood"`
	Intensity int    `json:"intensity"`
}

type symptomRequest struct {
	UserEmail string `json:"user_email"`
	Symptom   string `json:"symptom"`
	Severity  int    `json:"severity"`
}

type mealRequest struct {
	UserEmail string   `json:"user_email"`
	MealType  string   `json:"meal_type"`
	Items     []string `json:"items"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleRecommend(c *fiber.Ctx) error {
	var req recommendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "message is required")
	}

	user, err := s.v.History().Bundle(c.Context(), req.UserEmail, 0)
	if err != nil {
		return err
	}
	if len(req.Facts) > 0 {
		if user.Facts == nil {
			user.Facts = map[string]string{}
		}
		for k, v := range req.Facts {
			user.Facts[k] = v
		}
	}

	result, err := s.v.AskWithContext(c.Context(), req.Message, user)
	if err != nil {
		return err
	}
	return c.JSON(renderResult(result))
}

func (s *Server) handleResume(c *fiber.Ctx) error {
	var req resumeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" || req.FieldHint == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id and field_hint are required")
	}

	result, err := s.v.Answer(c.Context(), req.SessionID, req.FieldHint, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(renderResult(result))
}

func (s *Server) handleSession(c *fiber.Ctx) error {
	sess, err := s.v.Session(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(sess)
}

func (s *Server) handlePlan(c *fiber.Ctx) error {
	p, err := s.v.Plan(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (s *Server) handleAbort(c *fiber.Ctx) error {
	if err := s.v.Abort(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "aborted"})
}

func (s *Server) handleLogMood(c *fiber.Ctx) error {
	var req moodRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserEmail == "" || req.Mood == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_email and mood are required")
	}
	if err := s.v.History().AddMood(c.Context(), req.UserEmail, core.MoodEntry{Mood: req.Mood, Intensity: req.Intensity}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "logged"})
}

func (s *Server) handleLogSymptom(c *fiber.Ctx) error {
	var req symptomRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserEmail == "" || req.Symptom == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_email and symptom are required")
	}
	if err := s.v.History().AddSymptom(c.Context(), req.UserEmail, core.SymptomEntry{Symptom: req.Symptom, Severity: req.Severity}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "logged"})
}

func (s *Server) handleLogMeal(c *fiber.Ctx) error {
	var req mealRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserEmail == "" || req.MealType == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_email and meal_type are required")
	}
	if err := s.v.History().AddMeal(c.Context(), req.UserEmail, core.MealEntry{MealType: req.MealType, Items: req.Items}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "logged"})
}

// renderResult shapes the two orchestration outcomes for transport. A
// clarification is a normal 200 response requiring caller action, not an
// error.
func renderResult(r *orchestrator.Result) fiber.Map {
	if r.NeedsInput() {
		return fiber.Map{
			"status":        "awaiting_user",
			"session_id":    r.SessionID,
			"clarification": r.Clarification,
		}
	}
	return fiber.Map{
		"status":     "completed",
		"session_id": r.SessionID,
		"plan":       r.Plan,
	}
}
