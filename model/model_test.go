package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUIDWithSuffix(t *testing.T) {
	id := GenerateUUIDWithSuffix("batch")
	assert.True(t, strings.HasPrefix(id, "batch_"))
	assert.NotEqual(t, id, GenerateUUIDWithSuffix("batch"))
}

func TestGetConfidenceLevel(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, GetConfidenceLevel(100))
	assert.Equal(t, ConfidenceHigh, GetConfidenceLevel(90))
	assert.Equal(t, ConfidenceMedium, GetConfidenceLevel(89))
	assert.Equal(t, ConfidenceMedium, GetConfidenceLevel(55))
	assert.Equal(t, ConfidenceLow, GetConfidenceLevel(54))
	assert.Equal(t, ConfidenceLow, GetConfidenceLevel(0))
}
