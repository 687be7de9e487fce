package plan

import (
	"time"

	"github.com/vaidya-ai/vaidya/core"
)

// Disclaimer is attached verbatim to every FinalPlan. It is not configurable.
const Disclaimer = "This is Ayurvedic guidance only and not a substitute for professional medical advice. Please consult a qualified practitioner for diagnosis and treatment."

// FinalPlan is the single artifact produced from a completed session: one
// structured payload per panel agent, the mandatory safety disclaimer, and the
// generation timestamp. It is created exactly once, by Aggregate, and never
// partially built.
type FinalPlan struct {
	SessionID   string                  `json:"session_id"`
	Payloads    map[string]core.Payload `json:"payloads"`
	Disclaimer  string                  `json:"disclaimer"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// Aggregate merges the session's produced payloads into a FinalPlan. The
// session must be completed and hold a produced payload for every required
// agent; a gap yields *core.IncompleteSessionError. That check is defensive,
// the scheduler's completion guard makes it unreachable in normal operation.
//
// Pure function of the turn log; the session is not mutated.
func Aggregate(sess *core.Session, required []string) (*FinalPlan, error) {
	if sess.CurrentStatus() != core.StatusCompleted {
		return nil, &core.IncompleteSessionError{SessionID: sess.ID, Missing: missingFrom(sess, required)}
	}
	payloads := sess.PayloadsByAgent()
	if missing := missingNames(payloads, required); len(missing) > 0 {
		return nil, &core.IncompleteSessionError{SessionID: sess.ID, Missing: missing}
	}
	return &FinalPlan{
		SessionID:   sess.ID,
		Payloads:    payloads,
		Disclaimer:  Disclaimer,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func missingFrom(sess *core.Session, required []string) []string {
	return missingNames(sess.PayloadsByAgent(), required)
}

func missingNames(payloads map[string]core.Payload, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := payloads[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
