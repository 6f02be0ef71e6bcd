// Package language maps course languages and dialects to the locale codes the
// Azure speech backend expects.
package language

import (
	"fmt"

	"github.com/windfall/kalam_service/internal/errors"
)

// Language is a course language offered by the platform.
type Language string

const (
	Arabic  Language = "Arabic"
	French  Language = "French"
	Spanish Language = "Spanish"
)

// Dialect qualifies a language that has more than one supported variant.
type Dialect string

const (
	MSA       Dialect = "MSA"
	Levantine Dialect = "Levantine"
	Egyptian  Dialect = "Egyptian"
)

// dialectCodes holds languages that must be qualified with a dialect.
var dialectCodes = map[Language]map[Dialect]string{
	Arabic: {
		MSA:       "ar-SA",
		Levantine: "ar-SY",
		Egyptian:  "ar-EG",
	},
}

// plainCodes holds languages that take no dialect.
var plainCodes = map[Language]string{
	French:  "fr-FR",
	Spanish: "es-MX",
}

// Code resolves a language and optional dialect to an Azure locale code.
// Validated before any network call: a language that requires a dialect fails
// when the dialect is missing or unsupported, and vice versa.
func Code(lang Language, dialect Dialect) (string, error) {
	if byDialect, ok := dialectCodes[lang]; ok {
		if code, ok := byDialect[dialect]; ok {
			return code, nil
		}
		return "", errors.New(errors.ErrUnsupportedDialect,
			fmt.Sprintf("unsupported %s dialect: %q", lang, dialect))
	}

	if code, ok := plainCodes[lang]; ok {
		if dialect != "" {
			return "", errors.New(errors.ErrUnsupportedDialect,
				fmt.Sprintf("%s does not take a dialect, got %q", lang, dialect))
		}
		return code, nil
	}

	return "", errors.Validation(fmt.Sprintf("unsupported language: %q", lang))
}

// Supported reports whether lang is a known course language.
func Supported(lang Language) bool {
	if _, ok := dialectCodes[lang]; ok {
		return true
	}
	_, ok := plainCodes[lang]
	return ok
}
