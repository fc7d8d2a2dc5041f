package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/report"
)

func TestPreset(t *testing.T) {
	today := date("2024-05-17")

	tests := []struct {
		name      string
		preset    string
		wantStart string
		wantEnd   string
		wantType  report.PeriodType
	}{
		{name: "ThisMonth", preset: report.PresetThisMonth, wantStart: "2024-05-01", wantEnd: "2024-05-17", wantType: report.PeriodMonthly},
		{name: "LastMonth", preset: report.PresetLastMonth, wantStart: "2024-04-01", wantEnd: "2024-04-30", wantType: report.PeriodMonthly},
		{name: "ThisQuarter", preset: report.PresetThisQuarter, wantStart: "2024-04-01", wantEnd: "2024-05-17", wantType: report.PeriodQuarterly},
		{name: "ThisYear", preset: report.PresetThisYear, wantStart: "2024-01-01", wantEnd: "2024-05-17", wantType: report.PeriodYearly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := report.Preset(tt.preset, today)
			require.NoError(t, err)
			assert.Equal(t, date(tt.wantStart), got.Start)
			assert.Equal(t, date(tt.wantEnd), got.End)
			assert.Equal(t, tt.wantType, got.PeriodType)
		})
	}
}

func TestPreset_LastMonthInJanuary(t *testing.T) {
	got, err := report.Preset(report.PresetLastMonth, date("2024-01-09"))
	require.NoError(t, err)
	assert.Equal(t, date("2023-12-01"), got.Start)
	assert.Equal(t, date("2023-12-31"), got.End)
}

func TestPreset_Unknown(t *testing.T) {
	_, err := report.Preset("last_decade", date("2024-01-09"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
