package hosted

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"diario/internal/models"
	"diario/internal/records"
	"diario/internal/services"
)

// Entries keeps daily entries in the registros table, one row per user and
// date. A water-only day has a NULL humor.
type Entries struct {
	db     *sqlx.DB
	encSvc *services.EncryptionService
}

var _ records.EntryRepository = (*Entries)(nil)

func NewEntries(db *sqlx.DB, encSvc *services.EncryptionService) *Entries {
	return &Entries{db: db, encSvc: encSvc}
}

const entrySelect = `SELECT id, id_usuario, data,
	COALESCE(humor, 0) AS humor,
	COALESCE(gratidao_1, '') AS gratidao_1,
	COALESCE(gratidao_2, '') AS gratidao_2,
	COALESCE(gratidao_3, '') AS gratidao_3,
	COALESCE(descricao, '') AS descricao,
	water_intake, created_at, updated_at
	FROM registros`

func (r *Entries) decrypt(entries []models.DailyEntry) error {
	for i := range entries {
		if err := r.encSvc.DecryptEntry(&entries[i]); err != nil {
			return fmt.Errorf("decrypt entry %s: %w", entries[i].EntryDate, err)
		}
	}
	return nil
}

func (r *Entries) Entries(ctx context.Context, userID string) ([]models.DailyEntry, error) {
	entries := []models.DailyEntry{}
	err := r.db.SelectContext(ctx, &entries, r.db.Rebind(entrySelect+` WHERE id_usuario = ? ORDER BY data DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("select registros: %w", err)
	}
	return entries, r.decrypt(entries)
}

func (r *Entries) Entry(ctx context.Context, userID, date string) (models.DailyEntry, bool, error) {
	var e models.DailyEntry
	err := r.db.GetContext(ctx, &e, r.db.Rebind(entrySelect+` WHERE id_usuario = ? AND data = ?`), userID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DailyEntry{}, false, nil
	}
	if err != nil {
		return models.DailyEntry{}, false, fmt.Errorf("select registro: %w", err)
	}
	if err := r.encSvc.DecryptEntry(&e); err != nil {
		return models.DailyEntry{}, false, fmt.Errorf("decrypt entry %s: %w", date, err)
	}
	return e, true, nil
}

// PutEntry upserts on (id_usuario, data). The caller serializes writes per
// user, so reading the existing row first is race free.
func (r *Entries) PutEntry(ctx context.Context, userID string, e models.DailyEntry) (models.DailyEntry, bool, error) {
	prev, replaced, err := r.Entry(ctx, userID, e.EntryDate)
	if err != nil {
		return models.DailyEntry{}, false, err
	}
	e.UserID = userID
	if replaced {
		e.ID = prev.ID
		e.CreatedAt = prev.CreatedAt
	} else if e.ID == "" {
		e.ID = uuid.NewString()
	}

	row := e
	if err := r.encSvc.EncryptEntry(&row); err != nil {
		return models.DailyEntry{}, false, err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO registros
		(id, id_usuario, data, humor, gratidao_1, gratidao_2, gratidao_3, descricao, water_intake, created_at, updated_at)
		VALUES (?, ?, ?, NULLIF(?, 0), ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id_usuario, data) DO UPDATE SET
		  humor = EXCLUDED.humor,
		  gratidao_1 = EXCLUDED.gratidao_1,
		  gratidao_2 = EXCLUDED.gratidao_2,
		  gratidao_3 = EXCLUDED.gratidao_3,
		  descricao = EXCLUDED.descricao,
		  water_intake = EXCLUDED.water_intake,
		  updated_at = EXCLUDED.updated_at`),
		row.ID, row.UserID, row.EntryDate, row.MoodScore, row.Gratitude1, row.Gratitude2, row.Gratitude3,
		row.Reflection, row.WaterIntake, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return models.DailyEntry{}, false, fmt.Errorf("upsert registro: %w", err)
	}
	return e, replaced, nil
}

func (r *Entries) DeleteEntries(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM registros WHERE id_usuario = ?`), userID)
	return err
}
