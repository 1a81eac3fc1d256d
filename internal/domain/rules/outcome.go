package rules

// OutcomeGrade is the end-of-session performance tier.
type OutcomeGrade string

const (
	GradeExemplary OutcomeGrade = "Exemplary"
	GradeSolid     OutcomeGrade = "Solid"
	GradeFrazzled  OutcomeGrade = "Frazzled"
	GradeBurnedOut OutcomeGrade = "BurnedOut"
)

// Outcome summarizes a finished session for the result screen.
type Outcome struct {
	Grade     OutcomeGrade `json:"grade"`
	Score     int          `json:"score"`
	Focus     float64      `json:"focus"`
	Processed int          `json:"processed"`
	Mistakes  int          `json:"mistakes"`
	Summary   string       `json:"summary"`
}

// EvaluateOutcome grades a finished session from its final meters and counters.
func EvaluateOutcome(score int, focus float64, processed, mistakes int) Outcome {
	o := Outcome{
		Score:     score,
		Focus:     focus,
		Processed: processed,
		Mistakes:  mistakes,
	}

	effective := score - mistakes*ScorePenaltyAgentMistake/2

	switch {
	case effective >= 60 && focus >= 40:
		o.Grade = GradeExemplary
		o.Summary = "You kept the inbox under control and still had attention to spare."
	case effective >= 30:
		o.Grade = GradeSolid
		o.Summary = "You triaged the important threads, at a cost."
	case focus <= 5:
		o.Grade = GradeBurnedOut
		o.Summary = "The inbox won. Nothing got your full attention."
	default:
		o.Grade = GradeFrazzled
		o.Summary = "You stayed afloat, barely. Too much slipped past."
	}

	return o
}
