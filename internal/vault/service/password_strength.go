package service

import (
	"regexp"
	"unicode"
)

// StrengthLevel buckets a strength score into a human-readable label.
type StrengthLevel string

const (
	StrengthVeryWeak   StrengthLevel = "very_weak"
	StrengthWeak       StrengthLevel = "weak"
	StrengthMedium     StrengthLevel = "medium"
	StrengthStrong     StrengthLevel = "strong"
	StrengthVeryStrong StrengthLevel = "very_strong"
)

// StrengthReport is the deterministic analysis of a candidate password.
// The same input always yields the same report.
type StrengthReport struct {
	Score     int
	Level     StrengthLevel
	Length    int
	HasLower  bool
	HasUpper  bool
	HasNumber bool
	HasSymbol bool
	Feedback  []string
}

var sequentialRunPattern = regexp.MustCompile(`(012|123|234|345|456|567|678|789|890)`)

// hasRepeatedRun reports whether the password contains a run of three or more
// identical characters.
func hasRepeatedRun(password string) bool {
	var prev rune
	run := 0
	for _, r := range password {
		if r == prev {
			run++
			if run >= 3 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// CheckStrength scores a password with a heuristic weighted sum over length
// and character-class diversity, with penalties for repeated and sequential
// substrings.
func (g *PasswordGenerator) CheckStrength(password string) StrengthReport {
	report := StrengthReport{Length: len(password)}

	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			report.HasLower = true
		case unicode.IsUpper(r):
			report.HasUpper = true
		case unicode.IsNumber(r):
			report.HasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			report.HasSymbol = true
		}
	}

	// Length scoring
	switch {
	case report.Length >= 12:
		report.Score += 25
	case report.Length >= 8:
		report.Score += 15
	default:
		report.Feedback = append(report.Feedback, "use at least 8 characters")
	}

	// Character class scoring
	if report.HasLower {
		report.Score += 15
	} else {
		report.Feedback = append(report.Feedback, "add lowercase letters")
	}
	if report.HasUpper {
		report.Score += 15
	} else {
		report.Feedback = append(report.Feedback, "add uppercase letters")
	}
	if report.HasNumber {
		report.Score += 15
	} else {
		report.Feedback = append(report.Feedback, "add numbers")
	}
	if report.HasSymbol {
		report.Score += 20
	} else {
		report.Feedback = append(report.Feedback, "add special characters")
	}

	// Bonus for extra length
	if report.Length >= 16 {
		report.Score += 10
	}

	// Pattern penalties
	if hasRepeatedRun(password) {
		report.Score -= 10
		report.Feedback = append(report.Feedback, "avoid repeated characters")
	}
	if sequentialRunPattern.MatchString(password) {
		report.Score -= 10
		report.Feedback = append(report.Feedback, "avoid sequential numbers")
	}

	switch {
	case report.Score >= 80:
		report.Level = StrengthVeryStrong
	case report.Score >= 60:
		report.Level = StrengthStrong
	case report.Score >= 40:
		report.Level = StrengthMedium
	case report.Score >= 20:
		report.Level = StrengthWeak
	default:
		report.Level = StrengthVeryWeak
	}

	return report
}
