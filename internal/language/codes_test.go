package language

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/windfall/kalam_service/internal/errors"
)

func TestCodeDialectLanguage(t *testing.T) {
	tests := []struct {
		name    string
		lang    Language
		dialect Dialect
		want    string
	}{
		{"arabic msa", Arabic, MSA, "ar-SA"},
		{"arabic levantine", Arabic, Levantine, "ar-SY"},
		{"arabic egyptian", Arabic, Egyptian, "ar-EG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := Code(tt.lang, tt.dialect)
			require.NoError(t, err)
			require.Equal(t, tt.want, code)
		})
	}
}

func TestCodePlainLanguage(t *testing.T) {
	code, err := Code(French, "")
	require.NoError(t, err)
	require.Equal(t, "fr-FR", code)

	code, err = Code(Spanish, "")
	require.NoError(t, err)
	require.Equal(t, "es-MX", code)
}

func TestCodeMissingDialect(t *testing.T) {
	_, err := Code(Arabic, "")
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	require.Equal(t, errors.ErrUnsupportedDialect, appErr.Code)
}

func TestCodeUnknownDialect(t *testing.T) {
	_, err := Code(Arabic, Dialect("Gulf"))
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	require.Equal(t, errors.ErrUnsupportedDialect, appErr.Code)
}

func TestCodeDialectOnPlainLanguage(t *testing.T) {
	_, err := Code(French, MSA)
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	require.Equal(t, errors.ErrUnsupportedDialect, appErr.Code)
}

func TestCodeUnknownLanguage(t *testing.T) {
	_, err := Code(Language("Klingon"), "")
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	require.Equal(t, errors.ErrValidation, appErr.Code)
}

func TestSupported(t *testing.T) {
	require.True(t, Supported(Arabic))
	require.True(t, Supported(French))
	require.False(t, Supported(Language("Klingon")))
}
