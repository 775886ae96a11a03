package pnl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGranularity_PeriodKey(t *testing.T) {
	march := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	december := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		granularity Granularity
		date        time.Time
		key         string
		label       string
	}{
		{GranularityMonthly, march, "2026-03", "Mar 2026"},
		{GranularityMonthly, december, "2026-12", "Dec 2026"},
		{GranularityQuarterly, march, "2026-Q1", "Q1 2026"},
		{GranularityQuarterly, december, "2026-Q4", "Q4 2026"},
		{GranularityAnnual, march, "2026", "2026"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.granularity.PeriodKey(tt.date))
			assert.Equal(t, tt.label, tt.granularity.PeriodLabel(tt.date))
		})
	}
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("MONTHLY")
	assert.NoError(t, err)
	assert.Equal(t, GranularityMonthly, g)

	_, err = ParseGranularity("weekly")
	assert.Error(t, err)

	_, err = ParseGranularity("")
	assert.Error(t, err)
}
