package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageLimit(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{
			name:     "Empty falls back to default",
			raw:      "",
			expected: DefaultPageSize,
		},
		{
			name:     "Not a number falls back to default",
			raw:      "abc",
			expected: DefaultPageSize,
		},
		{
			name:     "Zero falls back to default",
			raw:      "0",
			expected: DefaultPageSize,
		},
		{
			name:     "Negative falls back to default",
			raw:      "-5",
			expected: DefaultPageSize,
		},
		{
			name:     "Reasonable value kept",
			raw:      "50",
			expected: 50,
		},
		{
			name:     "Oversized value clamped",
			raw:      "1000000",
			expected: maxPageSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pageLimit(tt.raw))
		})
	}
}
