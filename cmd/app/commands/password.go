package commands

import (
	"fmt"
	"strings"

	vaultService "github.com/passkeep/passkeep/internal/vault/service"
)

// GeneratePasswordOptions carries the generate-password command flags.
type GeneratePasswordOptions struct {
	Length         int
	NoUpper        bool
	NoLower        bool
	NoNumbers      bool
	NoSymbols      bool
	AllowAmbiguous bool
}

// RunGeneratePassword generates a random password and prints it together with
// its strength analysis.
func RunGeneratePassword(opts GeneratePasswordOptions) error {
	generator := vaultService.NewPasswordGenerator()

	password, err := generator.Generate(vaultService.GeneratorOptions{
		Length:           opts.Length,
		Lowercase:        !opts.NoLower,
		Uppercase:        !opts.NoUpper,
		Numbers:          !opts.NoNumbers,
		Symbols:          !opts.NoSymbols,
		ExcludeAmbiguous: !opts.AllowAmbiguous,
	})
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}

	report := generator.CheckStrength(password)

	fmt.Println(password)
	fmt.Printf("# strength: %s (score %d/100)\n", report.Level, report.Score)
	return nil
}

// RunCheckStrength analyzes a password and prints the deterministic strength
// report.
func RunCheckStrength(password string) error {
	if password == "" {
		return fmt.Errorf("password argument is required")
	}

	generator := vaultService.NewPasswordGenerator()
	report := generator.CheckStrength(password)

	fmt.Printf("Score:   %d/100\n", report.Score)
	fmt.Printf("Level:   %s\n", report.Level)
	fmt.Printf("Length:  %d\n", report.Length)
	fmt.Printf("Classes: lower=%t upper=%t number=%t symbol=%t\n",
		report.HasLower, report.HasUpper, report.HasNumber, report.HasSymbol)
	if len(report.Feedback) > 0 {
		fmt.Printf("Advice:  %s\n", strings.Join(report.Feedback, "; "))
	}
	return nil
}
