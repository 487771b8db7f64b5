package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSample(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{"Mixed letters and unit", "12ab.5kg\n", 12.5, true},
		{"Plain integer", "18500", 18500, true},
		{"Indicator frame with sign and padding", "+ 007200 kg\r\n", 7200, true},
		{"Second separator truncates", "1.2.3", 1.2, true},
		{"Leading dot", ".5", 0.5, true},
		{"Trailing dot", "42.", 42, true},
		{"Dashes only", "----", 0, false},
		{"Lone dot", ".", 0, false},
		{"Empty", "", 0, false},
		{"Letters only", "ST,GS,kg", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSample(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
