package domain

// Strength feedback bands.
const (
	StrengthVeryWeak = "very weak"
	StrengthWeak     = "weak"
	StrengthFair     = "fair"
	StrengthGood     = "good"
	StrengthStrong   = "strong"
)

// MaxStrengthScore is the highest score a password can reach.
const MaxStrengthScore = 6

// Strength is the heuristic score of a password or PIN.
type Strength struct {
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// StrengthFeedback returns the feedback band for a score.
func StrengthFeedback(score int) string {
	switch {
	case score < 2:
		return StrengthVeryWeak
	case score < 3:
		return StrengthWeak
	case score < 4:
		return StrengthFair
	case score < 5:
		return StrengthGood
	default:
		return StrengthStrong
	}
}
