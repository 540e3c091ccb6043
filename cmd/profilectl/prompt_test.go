package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptSecret_KeepsGivenValue(t *testing.T) {
	v := "abcdef"
	require.NoError(t, promptSecret(&v, "Password"))
	assert.Equal(t, "abcdef", v)
}

func TestPromptSecret_NoTerminalLeavesEmpty(t *testing.T) {
	// go test runs without a terminal on stdin
	v := ""
	require.NoError(t, promptSecret(&v, "Password"))
	assert.Empty(t, v)
}
