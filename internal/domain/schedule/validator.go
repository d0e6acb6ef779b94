package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
)

// Field names violations are keyed to. They match the attribute names of
// the appointment resource so the API layer can point clients at the
// offending attribute.
const (
	FieldDate      = "date"
	FieldStartTime = "start_time"
)

// Violation describes a single broken scheduling rule.
type Violation struct {
	Field  string
	Detail string
}

// Violations is the full set of rules a candidate slot breaks. It
// implements error so services can return it through error paths; all
// violations are accumulated so a client sees every problem at once.
type Violations []Violation

func (v Violations) Error() string {
	details := make([]string, len(v))
	for i, violation := range v {
		details[i] = violation.Detail
	}
	return "scheduling validation failed: " + strings.Join(details, "; ")
}

// Validator checks candidate appointment slots against the scheduling
// rules. It is stateless apart from its parameters and clock; the caller
// supplies the existing bookings for the candidate date.
type Validator struct {
	params Params
	now    func() time.Time
}

// NewValidator creates a Validator with the given parameters. The clock
// is injectable for testing; pass nil to use time.Now.
func NewValidator(params Params, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{params: params, now: now}
}

// Check validates a candidate (date, start) slot against every rule and
// returns all violations, or nil when the slot is acceptable. existing
// holds the start times already booked on that date, excluding the
// appointment being rescheduled if any.
//
// Boundary conventions: two bookings conflict when their starts are
// strictly less than one slot apart, so starts exactly one slot apart
// touch and are both kept. The office window accepts starts in
// [OpenTime, CloseTime-Slot]; the last-hour-before-closing case is an
// office-hours violation, not an overlap.
func (v *Validator) Check(date domain.Date, start domain.TimeOfDay, existing []domain.TimeOfDay) Violations {
	var violations Violations

	now := v.now()
	today := domain.DateOf(now)

	if date.Before(today) {
		violations = append(violations, Violation{
			Field:  FieldDate,
			Detail: "The date must be today or a future date.",
		})
	}

	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		violations = append(violations, Violation{
			Field:  FieldDate,
			Detail: "You can not create an appointment on weekends.",
		})
	}

	if date.Equal(today) && start < domain.TimeOfDayOf(now) {
		violations = append(violations, Violation{
			Field:  FieldStartTime,
			Detail: "You can not create an appointment with a time before the current time.",
		})
	}

	if start < v.params.OpenTime || start > v.params.LatestStart() {
		violations = append(violations, Violation{
			Field: FieldStartTime,
			Detail: fmt.Sprintf("The time must be into the accepted hours. From %s to %s.",
				v.params.OpenTime, v.params.CloseTime),
		})
	}

	if v.crossesHours(start, existing) {
		violations = append(violations, Violation{
			Field:  FieldStartTime,
			Detail: "There are cross hours",
		})
	}

	return violations
}

// crossesHours reports whether the candidate start falls inside the open
// interval (s-slot, s+slot) around any existing start s.
func (v *Validator) crossesHours(start domain.TimeOfDay, existing []domain.TimeOfDay) bool {
	slot := v.params.SlotMinutes()
	for _, s := range existing {
		if start.MinutesApart(s) < slot {
			return true
		}
	}
	return false
}
