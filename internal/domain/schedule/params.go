// Package schedule implements the appointment scheduling rules: the
// weekend exclusion, the office-hours window, the non-past-time check
// and the cross-hours overlap rule.
package schedule

import (
	"time"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
)

// Params defines the configurable parameters of the scheduling rules.
type Params struct {
	// OpenTime is the earliest acceptable appointment start.
	OpenTime domain.TimeOfDay

	// CloseTime is the end of the office day. Appointments run for a
	// full slot, so the latest acceptable start is CloseTime - Slot.
	CloseTime domain.TimeOfDay

	// Slot is the fixed duration of every appointment.
	Slot time.Duration
}

// NewDefaultParams returns the stock office schedule: 09:00 to 18:00
// with one-hour appointments.
func NewDefaultParams() Params {
	return Params{
		OpenTime:  9 * 60,
		CloseTime: 18 * 60,
		Slot:      time.Hour,
	}
}

// SlotMinutes returns the slot length in whole minutes.
func (p Params) SlotMinutes() int {
	return int(p.Slot / time.Minute)
}

// LatestStart returns the last start time that still fits a full slot
// before closing.
func (p Params) LatestStart() domain.TimeOfDay {
	return p.CloseTime - domain.TimeOfDay(p.SlotMinutes())
}
