package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordGenerator_CheckStrength(t *testing.T) {
	generator := NewPasswordGenerator()

	t.Run("empty password", func(t *testing.T) {
		report := generator.CheckStrength("")
		assert.Equal(t, 0, report.Score)
		assert.Equal(t, StrengthVeryWeak, report.Level)
		assert.Equal(t, 0, report.Length)
		assert.False(t, report.HasLower)
		assert.False(t, report.HasUpper)
		assert.False(t, report.HasNumber)
		assert.False(t, report.HasSymbol)
		assert.NotEmpty(t, report.Feedback)
	})

	t.Run("short lowercase-only password", func(t *testing.T) {
		report := generator.CheckStrength("abd")
		assert.Equal(t, 15, report.Score)
		assert.Equal(t, StrengthVeryWeak, report.Level)
		assert.True(t, report.HasLower)
		assert.Contains(t, report.Feedback, "use at least 8 characters")
	})

	t.Run("common lowercase word", func(t *testing.T) {
		report := generator.CheckStrength("password")
		// 15 length + 15 lowercase
		assert.Equal(t, 30, report.Score)
		assert.Equal(t, StrengthWeak, report.Level)
		assert.Contains(t, report.Feedback, "add uppercase letters")
		assert.Contains(t, report.Feedback, "add numbers")
		assert.Contains(t, report.Feedback, "add special characters")
	})

	t.Run("mixed case with number", func(t *testing.T) {
		report := generator.CheckStrength("Kzqwmrtb7")
		// 15 length + 15 lowercase + 15 uppercase + 15 number
		assert.Equal(t, 60, report.Score)
		assert.Equal(t, StrengthStrong, report.Level)
		assert.Contains(t, report.Feedback, "add special characters")
	})

	t.Run("all classes but short", func(t *testing.T) {
		report := generator.CheckStrength("Kzq7!x")
		// 15 lowercase + 15 uppercase + 15 number + 20 symbol, no length points
		assert.Equal(t, 65, report.Score)
		assert.Equal(t, StrengthStrong, report.Level)
		assert.Contains(t, report.Feedback, "use at least 8 characters")
	})

	t.Run("long password with all classes", func(t *testing.T) {
		report := generator.CheckStrength("CorrectHorse42!x")
		// 25 length + 15+15+15+20 classes + 10 extra-length bonus
		assert.Equal(t, 100, report.Score)
		assert.Equal(t, StrengthVeryStrong, report.Level)
		assert.Equal(t, 16, report.Length)
		assert.Empty(t, report.Feedback)
	})

	t.Run("repeated run penalty", func(t *testing.T) {
		report := generator.CheckStrength("aaaqwerty")
		// 15 length + 15 lowercase - 10 repeated run
		assert.Equal(t, 20, report.Score)
		assert.Equal(t, StrengthWeak, report.Level)
		assert.Contains(t, report.Feedback, "avoid repeated characters")
	})

	t.Run("run of two is not penalized", func(t *testing.T) {
		report := generator.CheckStrength("aabbccdd")
		// 15 length + 15 lowercase, pairs are not runs
		assert.Equal(t, 30, report.Score)
		assert.NotContains(t, report.Feedback, "avoid repeated characters")
	})

	t.Run("run at the end of the password", func(t *testing.T) {
		report := generator.CheckStrength("qwertyzzz")
		// 15 length + 15 lowercase - 10 repeated run
		assert.Equal(t, 20, report.Score)
		assert.Contains(t, report.Feedback, "avoid repeated characters")
	})

	t.Run("sequential digits penalty", func(t *testing.T) {
		report := generator.CheckStrength("qwe123rty")
		// 15 length + 15 lowercase + 15 number - 10 sequential digits
		assert.Equal(t, 35, report.Score)
		assert.Equal(t, StrengthWeak, report.Level)
		assert.Contains(t, report.Feedback, "avoid sequential numbers")
	})

	t.Run("deterministic for the same input", func(t *testing.T) {
		report1 := generator.CheckStrength("Kzqwmrtb7")
		report2 := generator.CheckStrength("Kzqwmrtb7")
		assert.Equal(t, report1, report2)
	})

	t.Run("generated defaults score very strong", func(t *testing.T) {
		password, err := generator.Generate(DefaultGeneratorOptions())
		assert.NoError(t, err)

		report := generator.CheckStrength(password)
		assert.GreaterOrEqual(t, report.Score, 80)
		assert.Equal(t, StrengthVeryStrong, report.Level)
	})
}
