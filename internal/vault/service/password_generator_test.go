package service

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordGenerator(t *testing.T) {
	generator := NewPasswordGenerator()
	assert.NotNil(t, generator)
}

func TestPasswordGenerator_Generate(t *testing.T) {
	generator := NewPasswordGenerator()

	t.Run("default options", func(t *testing.T) {
		password, err := generator.Generate(DefaultGeneratorOptions())
		require.NoError(t, err)
		assert.Equal(t, 16, len(password))
	})

	t.Run("requested length is honored", func(t *testing.T) {
		for _, length := range []int{4, 8, 32, 64, 255} {
			opts := DefaultGeneratorOptions()
			opts.Length = length

			password, err := generator.Generate(opts)
			require.NoError(t, err)
			assert.Equal(t, length, len(password))
		}
	})

	t.Run("every enabled class is represented", func(t *testing.T) {
		opts := GeneratorOptions{
			Length:    8,
			Lowercase: true,
			Uppercase: true,
			Numbers:   true,
			Symbols:   true,
		}

		for range 50 {
			password, err := generator.Generate(opts)
			require.NoError(t, err)

			var hasLower, hasUpper, hasNumber, hasSymbol bool
			for _, r := range password {
				switch {
				case unicode.IsLower(r):
					hasLower = true
				case unicode.IsUpper(r):
					hasUpper = true
				case unicode.IsNumber(r):
					hasNumber = true
				default:
					hasSymbol = true
				}
			}
			assert.True(t, hasLower, "missing lowercase in %q", password)
			assert.True(t, hasUpper, "missing uppercase in %q", password)
			assert.True(t, hasNumber, "missing number in %q", password)
			assert.True(t, hasSymbol, "missing symbol in %q", password)
		}
	})

	t.Run("single class only", func(t *testing.T) {
		opts := GeneratorOptions{Length: 20, Numbers: true}

		password, err := generator.Generate(opts)
		require.NoError(t, err)
		for _, r := range password {
			assert.True(t, unicode.IsNumber(r), "unexpected character %q", r)
		}
	})

	t.Run("ambiguous characters are excluded", func(t *testing.T) {
		opts := DefaultGeneratorOptions()
		opts.Length = 64

		for range 20 {
			password, err := generator.Generate(opts)
			require.NoError(t, err)
			for _, c := range ambiguousChars {
				assert.NotContains(t, password, string(c))
			}
		}
	})

	t.Run("custom symbol set", func(t *testing.T) {
		opts := GeneratorOptions{
			Length:        32,
			Symbols:       true,
			CustomSymbols: "@#",
		}

		password, err := generator.Generate(opts)
		require.NoError(t, err)
		for _, r := range password {
			assert.True(t, strings.ContainsRune("@#", r), "unexpected character %q", r)
		}
	})

	t.Run("consecutive calls differ", func(t *testing.T) {
		opts := DefaultGeneratorOptions()

		password1, err := generator.Generate(opts)
		require.NoError(t, err)
		password2, err := generator.Generate(opts)
		require.NoError(t, err)

		assert.NotEqual(t, password1, password2)
	})

	t.Run("length below minimum", func(t *testing.T) {
		opts := DefaultGeneratorOptions()
		opts.Length = 3

		_, err := generator.Generate(opts)
		assert.Error(t, err)
	})

	t.Run("length above maximum", func(t *testing.T) {
		opts := DefaultGeneratorOptions()
		opts.Length = 256

		_, err := generator.Generate(opts)
		assert.Error(t, err)
	})

	t.Run("no character class selected", func(t *testing.T) {
		_, err := generator.Generate(GeneratorOptions{Length: 16})
		assert.Error(t, err)
	})
}
