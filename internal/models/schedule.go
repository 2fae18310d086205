// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Frequency is a named posting cadence. All presets except FrequencyCustom
// translate to a fixed cron expression; custom schedules supply their own.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly3  Frequency = "weekly_3"
	FrequencyWeekly2  Frequency = "weekly_2"
	FrequencyWeekly1  Frequency = "weekly_1"
	FrequencyMonthly2 Frequency = "monthly_2"
	FrequencyCustom   Frequency = "custom"
)

// Valid reports whether f is a known cadence preset.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly3, FrequencyWeekly2,
		FrequencyWeekly1, FrequencyMonthly2, FrequencyCustom:
		return true
	}
	return false
}

// TimeSlot is a named time-of-day for publishing. TimeSlotSpecific uses the
// schedule's SpecificTime field instead of a fixed hour.
type TimeSlot string

const (
	TimeSlotMorning   TimeSlot = "morning"
	TimeSlotAfternoon TimeSlot = "afternoon"
	TimeSlotEvening   TimeSlot = "evening"
	TimeSlotNight     TimeSlot = "night"
	TimeSlotSpecific  TimeSlot = "specific"
)

// Valid reports whether t is a known time slot.
func (t TimeSlot) Valid() bool {
	switch t {
	case TimeSlotMorning, TimeSlotAfternoon, TimeSlotEvening,
		TimeSlotNight, TimeSlotSpecific:
		return true
	}
	return false
}

// Monthly publish cap bounds. A site without an active schedule falls back
// to DefaultMonthlyLimit.
const (
	MinMonthlyLimit     = 1
	MaxMonthlyLimit     = 500
	DefaultMonthlyLimit = 100
)

// Schedule is a site's recurring publication configuration. At most one
// schedule per site may be active at a time; the store enforces this.
type Schedule struct {
	ID             uuid.UUID `json:"id"`
	SiteID         uuid.UUID `json:"site_id"`
	Frequency      Frequency `json:"frequency"`
	PreferredTime  TimeSlot  `json:"preferred_time"`
	SpecificTime   *string   `json:"specific_time,omitempty"` // "HH:MM", only with TimeSlotSpecific
	Timezone       string    `json:"timezone"`                // IANA identifier, e.g. "Europe/Bucharest"
	SkipHolidays   bool      `json:"skip_holidays"`
	MonthlyLimit   int       `json:"monthly_limit"`
	CronExpression string    `json:"cron_expression"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Location resolves the schedule's IANA timezone, falling back to UTC when
// the identifier is empty or unknown.
func (s *Schedule) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
