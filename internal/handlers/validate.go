// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"strings"
	"time"

	"autopress/internal/models"
	"autopress/internal/recurrence"
)

const (
	maxTitleLength   = 255
	maxExcerptLength = 500
	maxTopicLength   = 500
)

// validateScheduleFields checks the user-settable schedule fields and
// returns a human-readable message, or "" when everything is fine.
func validateScheduleFields(freq models.Frequency, slot models.TimeSlot, timezone string, monthlyLimit int) string {
	if !freq.Valid() {
		return fmt.Sprintf("unknown frequency %q", freq)
	}
	if !slot.Valid() {
		return fmt.Sprintf("unknown preferred time %q", slot)
	}
	if timezone == "" {
		return "timezone is required"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Sprintf("unknown timezone %q", timezone)
	}
	if monthlyLimit < models.MinMonthlyLimit || monthlyLimit > models.MaxMonthlyLimit {
		return fmt.Sprintf("monthly limit must be between %d and %d", models.MinMonthlyLimit, models.MaxMonthlyLimit)
	}
	return ""
}

// resolveExpression decides the stored cron expression for a schedule.
// Custom frequency requires a caller-supplied expression; every other
// frequency derives one unless the caller overrides it. The second return
// is a validation message, "" on success.
func resolveExpression(freq models.Frequency, slot models.TimeSlot, specific *string, explicit string) (string, string) {
	if explicit != "" {
		if err := recurrence.Validate(explicit); err != nil {
			return "", err.Error()
		}
		return explicit, ""
	}
	if freq == models.FrequencyCustom {
		return "", "custom frequency requires an explicit cron expression"
	}
	expr, err := recurrence.Translate(freq, slot, specific)
	if err != nil {
		return "", err.Error()
	}
	return expr, ""
}

// validatePostTitle rejects empty or oversized titles.
func validatePostTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "title is required"
	}
	if len(title) > maxTitleLength {
		return fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	return ""
}

// validatePostExcerpt bounds the optional excerpt.
func validatePostExcerpt(excerpt *string) string {
	if excerpt == nil {
		return ""
	}
	if len(*excerpt) > maxExcerptLength {
		return fmt.Sprintf("excerpt must be at most %d characters", maxExcerptLength)
	}
	return ""
}

// validateTopic bounds the optional generation topic.
func validateTopic(topic *string) string {
	if topic == nil {
		return ""
	}
	if len(*topic) > maxTopicLength {
		return fmt.Sprintf("topic must be at most %d characters", maxTopicLength)
	}
	return ""
}
