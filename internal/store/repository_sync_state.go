package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/the-momentum/open-wearables-sync/internal/logger"
	"github.com/the-momentum/open-wearables-sync/models"
)

type syncStateRepository struct {
	*DB
	logger *logger.Logger
}

// NewSyncStateRepository returns the SQLite-backed [SyncStateRepository].
func NewSyncStateRepository(db *DB, logger *logger.Logger) SyncStateRepository {
	return &syncStateRepository{DB: db, logger: logger}
}

func (r *syncStateRepository) Get(ctx context.Context, userKey string) (*models.SyncState, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select("user_key", "full_export", "created_at", "type_index", "total_sent").
		From("sync_sessions").
		Where(sq.Eq{"user_key": userKey}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}

	state := &models.SyncState{Progress: make(map[models.RecordType]*models.TypeProgress)}
	row := r.DB.QueryRowContext(ctx, query, args...)
	err = row.Scan(&state.UserKey, &state.FullExport, &state.CreatedAt, &state.TypeIndex, &state.TotalSent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSyncStateNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "syncStateRepository.Get").
			Str("user_key", userKey).
			Msg("failed to scan sync session row")
		return nil, fmt.Errorf("failed to query sync session: %w", err)
	}

	if err = r.loadProgress(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}

func (r *syncStateRepository) loadProgress(ctx context.Context, state *models.SyncState) error {
	query, args, err := sq.Select("record_type", "sent_count", "completed", "cursor").
		From("type_progress").
		Where(sq.Eq{"user_key": state.UserKey}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build progress query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query type progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		tp := &models.TypeProgress{}
		if err = rows.Scan(&tp.Type, &tp.SentCount, &tp.Completed, &tp.Cursor); err != nil {
			return fmt.Errorf("failed to scan type progress row: %w", err)
		}
		state.Progress[tp.Type] = tp
	}

	return rows.Err()
}

func (r *syncStateRepository) Save(ctx context.Context, state *models.SyncState) error {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save sync state: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Insert("sync_sessions").
		Columns("user_key", "full_export", "created_at", "type_index", "total_sent").
		Values(state.UserKey, state.FullExport, state.CreatedAt, state.TypeIndex, state.TotalSent).
		Suffix(`ON CONFLICT(user_key) DO UPDATE SET
			full_export = excluded.full_export,
			type_index = excluded.type_index,
			total_sent = excluded.total_sent`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build session upsert: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "syncStateRepository.Save").
			Str("user_key", state.UserKey).
			Msg("failed to upsert sync session")
		return fmt.Errorf("failed to save sync session: %w", err)
	}

	for _, tp := range state.Progress {
		if err = upsertProgress(ctx, tx, state.UserKey, tp); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *syncStateRepository) SaveProgress(ctx context.Context, userKey string, progress *models.TypeProgress) error {
	return upsertProgress(ctx, r.DB.DB, userKey, progress)
}

func (r *syncStateRepository) AdvanceCursor(ctx context.Context, userKey string, recordType models.RecordType, cursor string) error {
	query, args, err := sq.Insert("type_progress").
		Columns("user_key", "record_type", "sent_count", "completed", "cursor").
		Values(userKey, recordType, 0, false, cursor).
		Suffix(`ON CONFLICT(user_key, record_type) DO UPDATE SET cursor = excluded.cursor`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build cursor advance: %w", err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to advance cursor (type=%s): %w", recordType, err)
	}

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertProgress(ctx context.Context, db execer, userKey string, tp *models.TypeProgress) error {
	query, args, err := sq.Insert("type_progress").
		Columns("user_key", "record_type", "sent_count", "completed", "cursor").
		Values(userKey, tp.Type, tp.SentCount, tp.Completed, tp.Cursor).
		Suffix(`ON CONFLICT(user_key, record_type) DO UPDATE SET
			sent_count = excluded.sent_count,
			completed = excluded.completed,
			cursor = excluded.cursor`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build progress upsert: %w", err)
	}

	if _, err = db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save type progress (type=%s): %w", tp.Type, err)
	}

	return nil
}

func (r *syncStateRepository) Complete(ctx context.Context, userKey string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complete sync state: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Delete("sync_sessions").Where(sq.Eq{"user_key": userKey}).ToSql()
	if err != nil {
		return fmt.Errorf("build session delete: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete sync session: %w", err)
	}

	// Counters are per-session; cursors outlive it.
	query, args, err = sq.Update("type_progress").
		Set("sent_count", 0).
		Set("completed", false).
		Where(sq.Eq{"user_key": userKey}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build progress reset: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to reset type progress: %w", err)
	}

	return tx.Commit()
}

func (r *syncStateRepository) Cursors(ctx context.Context, userKey string) (map[models.RecordType]string, error) {
	query, args, err := sq.Select("record_type", "cursor").
		From("type_progress").
		Where(sq.Eq{"user_key": userKey}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cursors query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cursors: %w", err)
	}
	defer rows.Close()

	cursors := make(map[models.RecordType]string)
	for rows.Next() {
		var t models.RecordType
		var c string
		if err = rows.Scan(&t, &c); err != nil {
			return nil, fmt.Errorf("failed to scan cursor row: %w", err)
		}
		if c != "" {
			cursors[t] = c
		}
	}

	return cursors, rows.Err()
}

func (r *syncStateRepository) Delete(ctx context.Context, userKey string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete sync state: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"type_progress", "sync_sessions"} {
		query, args, err := sq.Delete(table).Where(sq.Eq{"user_key": userKey}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete for %s: %w", table, err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func (r *syncStateRepository) FullExportDone(ctx context.Context, userKey string) (bool, error) {
	query, args, err := sq.Select("full_export_done").
		From("sync_settings").
		Where(sq.Eq{"user_key": userKey}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build settings query: %w", err)
	}

	var done bool
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&done)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query sync settings: %w", err)
	}

	return done, nil
}

func (r *syncStateRepository) SetFullExportDone(ctx context.Context, userKey string) error {
	query, args, err := sq.Insert("sync_settings").
		Columns("user_key", "full_export_done").
		Values(userKey, true).
		Suffix(`ON CONFLICT(user_key) DO UPDATE SET full_export_done = excluded.full_export_done`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build settings upsert: %w", err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save sync settings: %w", err)
	}

	return nil
}
