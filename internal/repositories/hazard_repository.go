package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intconfig "tripplanner/internal/config"
	"tripplanner/internal/db"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
)

// HazardRepository manages the safety_alerts table.
type HazardRepository struct {
	DB  *sql.DB
	Now func() time.Time
}

func (r HazardRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r HazardRepository) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

const alertColumns = `id, region, hazard_type, severity, description, provider, is_active, observed_at, expires_at`

// ListActive returns active alerts for a region, every region when empty.
func (r HazardRepository) ListActive(ctx context.Context, region string) ([]models.HazardSignal, error) {
	conn := r.db()
	if conn == nil {
		return nil, errNoDB
	}
	query := `SELECT ` + alertColumns + ` FROM safety_alerts WHERE is_active = 1`
	args := []any{}
	if region != "" {
		query += ` AND region = ?`
		args = append(args, region)
	}
	query += ` ORDER BY observed_at DESC, id DESC`

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.HazardSignal{}
	for rows.Next() {
		h, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ActiveHazards returns the region's alerts still in effect now.
func (r HazardRepository) ActiveHazards(ctx context.Context, region string) ([]models.HazardSignal, error) {
	all, err := r.ListActive(ctx, region)
	if err != nil {
		return nil, err
	}
	now := r.now()
	out := all[:0]
	for _, h := range all {
		if h.InEffect(now) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r HazardRepository) Create(ctx context.Context, h models.HazardSignal) (models.HazardSignal, error) {
	conn := r.db()
	if conn == nil {
		return h, errNoDB
	}
	id, err := insertAlert(ctx, conn, h)
	if err != nil {
		return h, err
	}
	h.ID = id
	h.Active = true
	return h, nil
}

// Deactivate switches an alert off; an unknown or inactive id is not found.
func (r HazardRepository) Deactivate(ctx context.Context, id int64) error {
	conn := r.db()
	if conn == nil {
		return errNoDB
	}
	res, err := conn.ExecContext(ctx, `UPDATE safety_alerts SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: fmt.Sprintf("safety alert %d", id)}
	}
	return nil
}

// ReplaceProvider deactivates a provider's alerts and inserts the fresh set
// in one transaction.
func (r HazardRepository) ReplaceProvider(ctx context.Context, provider string, signals []models.HazardSignal) error {
	conn := r.db()
	if conn == nil {
		return errNoDB
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE safety_alerts SET is_active = 0 WHERE provider = ? AND is_active = 1`, provider); err != nil {
		return err
	}
	for _, h := range signals {
		h.Provider = provider
		if _, err := insertAlert(ctx, tx, h); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAlert(ctx context.Context, conn execer, h models.HazardSignal) (int64, error) {
	provider := h.Provider
	if provider == "" {
		provider = "admin"
	}
	observed := h.ObservedAt
	if observed.IsZero() {
		observed = time.Now()
	}
	res, err := conn.ExecContext(ctx, `INSERT INTO safety_alerts (region, hazard_type, severity, description, provider, is_active, observed_at, expires_at)
VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		h.Region,
		string(h.Type),
		string(h.Severity),
		h.Description,
		provider,
		observed.UTC(),
		db.NullTime(h.ExpiresAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(s rowScanner) (models.HazardSignal, error) {
	var (
		h         models.HazardSignal
		hazard    string
		severity  string
		active    int64
		expiresAt sql.NullTime
	)
	if err := s.Scan(&h.ID, &h.Region, &hazard, &severity, &h.Description, &h.Provider, &active, &h.ObservedAt, &expiresAt); err != nil {
		return h, err
	}
	h.Type = domain.ParseHazardType(hazard)
	h.Severity = domain.Severity(severity)
	h.Active = active != 0
	h.ObservedAt = h.ObservedAt.UTC()
	h.ExpiresAt = db.TimePtr(expiresAt)
	return h, nil
}
