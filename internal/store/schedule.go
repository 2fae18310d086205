// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"autopress/internal/models"
)

// ErrConflict is returned when creating or activating a schedule for a site
// that already has an active one.
var ErrConflict = errors.New("an active schedule already exists for this site")

// pgUniqueViolation is the PostgreSQL error code raised by the partial
// unique index on active schedules.
const pgUniqueViolation = "23505"

// ScheduleStore handles all schedule-related database operations. All
// reads and writes are scoped by site ownership: a schedule id paired with
// the wrong site behaves as if the schedule does not exist.
type ScheduleStore struct {
	db *sql.DB
}

// NewScheduleStore creates a new ScheduleStore with the given database connection.
func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

const scheduleColumns = `id, site_id, frequency, preferred_time, specific_time,
	timezone, skip_holidays, monthly_limit, cron_expression, is_active,
	created_at, updated_at`

func scanSchedule(row interface{ Scan(...any) error }, sc *models.Schedule) error {
	return row.Scan(
		&sc.ID, &sc.SiteID, &sc.Frequency, &sc.PreferredTime, &sc.SpecificTime,
		&sc.Timezone, &sc.SkipHolidays, &sc.MonthlyLimit, &sc.CronExpression,
		&sc.IsActive, &sc.CreatedAt, &sc.UpdatedAt,
	)
}

// ListBySite returns all schedules for a site, newest first.
func (s *ScheduleStore) ListBySite(siteID uuid.UUID) ([]models.Schedule, error) {
	rows, err := s.db.Query(`
		SELECT `+scheduleColumns+`
		FROM schedules WHERE site_id = $1
		ORDER BY created_at DESC
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.Schedule
	for rows.Next() {
		var sc models.Schedule
		if err := scanSchedule(rows, &sc); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, sc)
	}
	return schedules, rows.Err()
}

// FindByID retrieves a schedule scoped to a site. Returns nil if the
// schedule does not exist or belongs to a different site.
func (s *ScheduleStore) FindByID(id, siteID uuid.UUID) (*models.Schedule, error) {
	sc := &models.Schedule{}
	err := scanSchedule(s.db.QueryRow(`
		SELECT `+scheduleColumns+`
		FROM schedules WHERE id = $1 AND site_id = $2
	`, id, siteID), sc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find schedule by id: %w", err)
	}
	return sc, nil
}

// ActiveForSite returns the site's active schedule, or nil if none is active.
func (s *ScheduleStore) ActiveForSite(siteID uuid.UUID) (*models.Schedule, error) {
	sc := &models.Schedule{}
	err := scanSchedule(s.db.QueryRow(`
		SELECT `+scheduleColumns+`
		FROM schedules WHERE site_id = $1 AND is_active
	`, siteID), sc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active schedule for site: %w", err)
	}
	return sc, nil
}

// Create inserts a new schedule. Returns ErrConflict if the schedule is
// active and the site already has an active one; the partial unique index
// on (site_id) WHERE is_active backs this up against concurrent creates.
func (s *ScheduleStore) Create(sc *models.Schedule) (*models.Schedule, error) {
	if sc.IsActive {
		active, err := s.ActiveForSite(sc.SiteID)
		if err != nil {
			return nil, err
		}
		if active != nil {
			return nil, ErrConflict
		}
	}

	result := &models.Schedule{}
	err := scanSchedule(s.db.QueryRow(`
		INSERT INTO schedules (site_id, frequency, preferred_time, specific_time,
		                       timezone, skip_holidays, monthly_limit, cron_expression, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+scheduleColumns+`
	`, sc.SiteID, sc.Frequency, sc.PreferredTime, sc.SpecificTime,
		sc.Timezone, sc.SkipHolidays, sc.MonthlyLimit, sc.CronExpression, sc.IsActive), result)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return result, nil
}

// Update modifies an existing schedule, scoped to its site. Returns nil
// if no matching schedule exists.
func (s *ScheduleStore) Update(sc *models.Schedule) (*models.Schedule, error) {
	result := &models.Schedule{}
	err := scanSchedule(s.db.QueryRow(`
		UPDATE schedules SET
			frequency = $1, preferred_time = $2, specific_time = $3,
			timezone = $4, skip_holidays = $5, monthly_limit = $6,
			cron_expression = $7, updated_at = NOW()
		WHERE id = $8 AND site_id = $9
		RETURNING `+scheduleColumns+`
	`, sc.Frequency, sc.PreferredTime, sc.SpecificTime,
		sc.Timezone, sc.SkipHolidays, sc.MonthlyLimit,
		sc.CronExpression, sc.ID, sc.SiteID), result)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return result, nil
}

// Toggle flips the active flag without touching any other field. Activating
// a schedule while another is active for the same site returns ErrConflict.
// Returns nil if no matching schedule exists.
func (s *ScheduleStore) Toggle(id, siteID uuid.UUID, active bool) (*models.Schedule, error) {
	if active {
		current, err := s.ActiveForSite(siteID)
		if err != nil {
			return nil, err
		}
		if current != nil && current.ID != id {
			return nil, ErrConflict
		}
	}

	result := &models.Schedule{}
	err := scanSchedule(s.db.QueryRow(`
		UPDATE schedules SET is_active = $1, updated_at = NOW()
		WHERE id = $2 AND site_id = $3
		RETURNING `+scheduleColumns+`
	`, active, id, siteID), result)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("toggle schedule: %w", err)
	}
	return result, nil
}

// Delete removes a schedule scoped to its site. Already-published posts are
// unaffected. Reports whether a row was actually removed.
func (s *ScheduleStore) Delete(id, siteID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM schedules WHERE id = $1 AND site_id = $2`, id, siteID)
	if err != nil {
		return false, fmt.Errorf("delete schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete schedule rows affected: %w", err)
	}
	return n > 0, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
