package pnl

import (
	"fmt"
	"strings"
	"time"

	"github.com/sewline/backend/internal/domain/shared"
)

// Granularity selects how the period roll-up buckets orders
type Granularity string

const (
	GranularityMonthly   Granularity = "MONTHLY"
	GranularityQuarterly Granularity = "QUARTERLY"
	GranularityAnnual    Granularity = "ANNUAL"
)

// IsValid checks if the value is a known granularity
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityMonthly, GranularityQuarterly, GranularityAnnual:
		return true
	}
	return false
}

// String returns the string representation of Granularity
func (g Granularity) String() string {
	return string(g)
}

// ParseGranularity parses a granularity string, case-insensitively
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToUpper(s))
	if !g.IsValid() {
		return "", shared.NewDomainError("INVALID_GRANULARITY",
			"Granularity must be MONTHLY, QUARTERLY or ANNUAL")
	}
	return g, nil
}

// PeriodKey returns the sortable bucket key for a date, e.g. "2026-03",
// "2026-Q1" or "2026"
func (g Granularity) PeriodKey(t time.Time) string {
	switch g {
	case GranularityQuarterly:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case GranularityAnnual:
		return fmt.Sprintf("%04d", t.Year())
	default:
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	}
}

// PeriodLabel returns the human-readable bucket label for a date
func (g Granularity) PeriodLabel(t time.Time) string {
	switch g {
	case GranularityQuarterly:
		return fmt.Sprintf("Q%d %04d", (int(t.Month())-1)/3+1, t.Year())
	case GranularityAnnual:
		return fmt.Sprintf("%04d", t.Year())
	default:
		return t.Format("Jan 2006")
	}
}
