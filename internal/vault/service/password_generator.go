package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numberChars    = "0123456789"
	symbolChars    = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	// Characters easily confused with each other in printed passwords.
	ambiguousChars = "lIoO01|`"
)

// GeneratorOptions controls password generation. At least one character class
// must be enabled.
type GeneratorOptions struct {
	Length           int
	Lowercase        bool
	Uppercase        bool
	Numbers          bool
	Symbols          bool
	ExcludeAmbiguous bool
	// CustomSymbols replaces the default symbol set when non-empty.
	CustomSymbols string
}

// DefaultGeneratorOptions returns the options used when the caller has no
// preference: 16 characters from all four classes, ambiguous characters excluded.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Length:           16,
		Lowercase:        true,
		Uppercase:        true,
		Numbers:          true,
		Symbols:          true,
		ExcludeAmbiguous: true,
	}
}

// PasswordGenerator produces cryptographically random passwords guaranteeing
// at least one character from each requested class. It is stateless and safe
// for concurrent use.
type PasswordGenerator struct{}

// NewPasswordGenerator creates a new PasswordGenerator.
func NewPasswordGenerator() *PasswordGenerator {
	return &PasswordGenerator{}
}

// Generate creates a random password per the options.
func (g *PasswordGenerator) Generate(opts GeneratorOptions) (string, error) {
	if opts.Length < 4 {
		return "", errors.New("password length must be at least 4 characters")
	}
	if opts.Length > 255 {
		return "", errors.New("password length must not exceed 255")
	}

	classes := g.classes(opts)
	if len(classes) == 0 {
		return "", errors.New("at least one character type must be selected")
	}

	var pool strings.Builder
	for _, class := range classes {
		pool.WriteString(class)
	}

	// Start with one character from each class so every requested class is
	// represented, then fill the rest from the combined pool.
	out := make([]byte, 0, opts.Length)
	for _, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < opts.Length {
		c, err := randomChar(pool.String())
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	if err := shuffle(out); err != nil {
		return "", err
	}

	return string(out), nil
}

// classes builds the enabled character classes, applying ambiguous-character
// exclusion and the custom symbol set.
func (g *PasswordGenerator) classes(opts GeneratorOptions) []string {
	strip := func(s string) string {
		if !opts.ExcludeAmbiguous {
			return s
		}
		var b strings.Builder
		for _, r := range s {
			if !strings.ContainsRune(ambiguousChars, r) {
				b.WriteRune(r)
			}
		}
		return b.String()
	}

	var classes []string
	if opts.Lowercase {
		classes = append(classes, strip(lowercaseChars))
	}
	if opts.Uppercase {
		classes = append(classes, strip(uppercaseChars))
	}
	if opts.Numbers {
		classes = append(classes, strip(numberChars))
	}
	if opts.Symbols {
		symbols := symbolChars
		if opts.CustomSymbols != "" {
			symbols = opts.CustomSymbols
		}
		classes = append(classes, strip(symbols))
	}

	// Drop classes emptied by exclusion.
	out := classes[:0]
	for _, class := range classes {
		if class != "" {
			out = append(out, class)
		}
	}
	return out
}

// randomChar picks one character from the set using crypto/rand.
func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random character: %w", err)
	}
	return set[n.Int64()], nil
}

// shuffle performs a Fisher-Yates shuffle with crypto/rand so the guaranteed
// class characters do not cluster at fixed positions.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to shuffle password: %w", err)
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
