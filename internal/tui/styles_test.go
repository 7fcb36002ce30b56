package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "download…", TruncateString("download/v1.0.0/app.zip", 9))
	assert.Equal(t, "", TruncateString("x", 0))
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "v1   ", PadRight("v1", 5))
	assert.Equal(t, "   v1", PadLeft("v1", 5))
	assert.Equal(t, "v1.0…", PadRight("v1.0.10", 5))
	// wide runes count as two cells
	assert.Equal(t, "版本 ", PadRight("版本", 5))
}
