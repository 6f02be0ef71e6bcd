package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeminiWithModel(t *testing.T) {
	c := &GeminiClient{model: "gemini-2.0-flash"}

	// Empty override keeps the default.
	require.Same(t, c, c.WithModel(""))
	require.Equal(t, "gemini-2.0-flash", c.model)

	c.WithModel("gemini-2.5-pro")
	require.Equal(t, "gemini-2.5-pro", c.model)
}
