package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDangerDetector_Detect(t *testing.T) {
	d := NewDangerDetector()

	signs := d.Detect("My face is swollen and I have blurred vision")
	require.Len(t, signs, 2)
	assert.Equal(t, SignVision, signs[0].Type)
	assert.Equal(t, SignSwelling, signs[1].Type)
	assert.Equal(t, SeveritySevere, signs[0].Severity)
	assert.Equal(t, SeverityModerate, signs[1].Severity)

	assert.Empty(t, d.Detect("feeling great today"))
}

func TestUrgent(t *testing.T) {
	assert.False(t, Urgent(nil))
	assert.False(t, Urgent([]Sign{{Type: SignDizziness, Severity: SeverityMild}}))
	assert.True(t, Urgent([]Sign{{Type: SignDizziness, Severity: SeverityMild}, {Type: SignBleeding, Severity: SeveritySevere}}))
}

func TestExtractSeverity(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"the pain is unbearable", SeveritySevere},
		{"slight cramps", SeverityMild},
		{"cramps since morning", SeverityModerate},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSeverity(tt.message))
		})
	}
}
