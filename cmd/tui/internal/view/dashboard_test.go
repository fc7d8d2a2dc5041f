package view

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBar(t *testing.T) {
	type testCase struct {
		name   string
		v      decimal.Decimal
		peak   decimal.Decimal
		filled int
	}

	tests := []testCase{
		{name: "Peak", v: decimal.NewFromInt(500), peak: decimal.NewFromInt(500), filled: barWidth},
		{name: "Half", v: decimal.NewFromInt(250), peak: decimal.NewFromInt(500), filled: barWidth / 2},
		{name: "Zero", v: decimal.Zero, peak: decimal.NewFromInt(500), filled: 0},
		{name: "NoData", v: decimal.Zero, peak: decimal.Zero, filled: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bar(tt.v, tt.peak)

			assert.Equal(t, tt.filled, strings.Count(got, "█"))
			assert.Equal(t, barWidth, len([]rune(got)))
		})
	}
}
