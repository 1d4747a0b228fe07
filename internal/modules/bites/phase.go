package bites

import (
	"time"

	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
)

type Phase string

const (
	PhaseAcute    Phase = "acute"
	PhaseSubacute Phase = "subacute"
	PhaseChronic  Phase = "chronic"
	PhaseUnknown  Phase = "unknown"
)

const (
	acuteMaxDays    = 7
	subacuteMaxDays = 180
)

// ClassifyPhase buckets the calendar days between strokeDate and now.
func ClassifyPhase(strokeDate *time.Time, now time.Time) Phase {
	if strokeDate == nil {
		return PhaseUnknown
	}
	days := dates.DaysBetween(*strokeDate, now)
	switch {
	case days <= acuteMaxDays:
		return PhaseAcute
	case days <= subacuteMaxDays:
		return PhaseSubacute
	}
	return PhaseChronic
}

// DaysSinceStroke is 0 when the date is unknown.
func DaysSinceStroke(strokeDate *time.Time, now time.Time) int {
	if strokeDate == nil {
		return 0
	}
	return dates.DaysBetween(*strokeDate, now)
}
