// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package recurrence translates cadence presets into canonical five-field
// cron expressions and evaluates upcoming occurrences. All functions are
// pure: identical inputs always produce identical outputs.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"autopress/internal/models"
)

// MaxPreviewOccurrences bounds how many upcoming occurrences a single
// preview request may ask for.
const MaxPreviewOccurrences = 10

// parser accepts standard five-field expressions (minute, hour, day-of-month,
// month, day-of-week). Descriptors like "@daily" are deliberately excluded:
// stored expressions are always canonical five-field form.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// slotTimes maps each named time slot to its fixed hour and minute.
var slotTimes = map[models.TimeSlot]struct{ hour, minute int }{
	models.TimeSlotMorning:   {9, 0},
	models.TimeSlotAfternoon: {14, 0},
	models.TimeSlotEvening:   {18, 0},
	models.TimeSlotNight:     {22, 0},
}

// cadenceFields maps each preset to its day-of-month and day-of-week fields.
var cadenceFields = map[models.Frequency]struct{ dom, dow string }{
	models.FrequencyDaily:    {"*", "*"},
	models.FrequencyWeekly3:  {"*", "1,3,5"}, // Mon, Wed, Fri
	models.FrequencyWeekly2:  {"*", "2,5"},   // Tue, Fri
	models.FrequencyWeekly1:  {"*", "1"},     // Mon
	models.FrequencyMonthly2: {"1,15", "*"},  // 1st and 15th
}

// Translate produces the canonical cron expression for a cadence preset and
// time slot. The specific parameter supplies "HH:MM" for TimeSlotSpecific;
// when absent, 09:00 is used. FrequencyCustom has no derived expression and
// is rejected — custom schedules carry a caller-supplied expression instead.
func Translate(freq models.Frequency, slot models.TimeSlot, specific *string) (string, error) {
	if freq == models.FrequencyCustom {
		return "", fmt.Errorf("custom frequency requires an explicit cron expression")
	}
	fields, ok := cadenceFields[freq]
	if !ok {
		return "", fmt.Errorf("unknown frequency %q", freq)
	}

	hour, minute := 9, 0
	if slot == models.TimeSlotSpecific {
		if specific != nil && *specific != "" {
			t, err := time.Parse("15:04", strings.TrimSpace(*specific))
			if err != nil {
				return "", fmt.Errorf("invalid time %q: expected HH:MM", *specific)
			}
			hour, minute = t.Hour(), t.Minute()
		}
	} else {
		st, ok := slotTimes[slot]
		if !ok {
			return "", fmt.Errorf("unknown time slot %q", slot)
		}
		hour, minute = st.hour, st.minute
	}

	return fmt.Sprintf("%d %d %s * %s", minute, hour, fields.dom, fields.dow), nil
}

// Validate checks an expression for canonical five-field syntax and valid
// per-field ranges. Returns nil when the expression is usable.
func Validate(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return fmt.Errorf("cron expression is required")
	}
	if len(strings.Fields(expr)) != 5 {
		return fmt.Errorf("cron expression must have exactly 5 fields (minute hour day-of-month month day-of-week)")
	}
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// Next returns the first n occurrences of expr after the given instant,
// evaluated in loc. When skipHolidays is set, occurrences falling on a fixed
// holiday date are dropped and the search continues. n is capped at
// MaxPreviewOccurrences.
func Next(expr string, after time.Time, loc *time.Location, n int, skipHolidays bool) ([]time.Time, error) {
	if err := Validate(expr); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 1
	}
	if n > MaxPreviewOccurrences {
		n = MaxPreviewOccurrences
	}
	if loc == nil {
		loc = time.UTC
	}

	// The evaluator resolves times in the location embedded at parse time,
	// so the schedule's timezone is passed via the CRON_TZ prefix.
	sched, err := parser.Parse("CRON_TZ=" + loc.String() + " " + strings.TrimSpace(expr))
	if err != nil {
		return nil, fmt.Errorf("parse cron expression: %w", err)
	}

	occurrences := make([]time.Time, 0, n)
	cursor := after.In(loc)
	// Bounded search: even a yearly holiday-heavy expression converges well
	// within this many steps.
	for steps := 0; len(occurrences) < n && steps < 500; steps++ {
		next := sched.Next(cursor)
		if next.IsZero() {
			break
		}
		cursor = next
		if skipHolidays && IsHoliday(next) {
			continue
		}
		occurrences = append(occurrences, next)
	}

	if len(occurrences) == 0 {
		return nil, fmt.Errorf("cron expression %q yields no upcoming occurrences", expr)
	}
	return occurrences, nil
}

// holidays lists fixed-date holidays skipped when a schedule opts out of
// holiday publishing.
var holidays = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},
	{time.January, 2},
	{time.May, 1},
	{time.December, 25},
	{time.December, 26},
}

// IsHoliday reports whether t falls on a designated holiday date.
func IsHoliday(t time.Time) bool {
	for _, h := range holidays {
		if t.Month() == h.month && t.Day() == h.day {
			return true
		}
	}
	return false
}
