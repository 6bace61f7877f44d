package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/the-momentum/open-wearables-sync/internal/logger"
	"github.com/the-momentum/open-wearables-sync/models"
)

var outboxColumns = []string{
	"id", "user_key", "type_tag", "payload", "pending_cursor",
	"full_export", "attempts", "created_at",
}

type outboxRepository struct {
	*DB
	logger *logger.Logger
}

// NewOutboxRepository returns the SQLite-backed [OutboxRepository].
func NewOutboxRepository(db *DB, logger *logger.Logger) OutboxRepository {
	return &outboxRepository{DB: db, logger: logger}
}

func (r *outboxRepository) Put(ctx context.Context, item models.OutboxItem) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Insert("outbox_items").
		Columns(outboxColumns...).
		Values(
			item.ID,
			item.UserKey,
			item.TypeTag,
			item.Payload,
			item.PendingCursor,
			item.FullExport,
			item.Attempts,
			item.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build outbox insert: %w", err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "outboxRepository.Put").
			Str("item_id", item.ID).
			Str("type_tag", item.TypeTag).
			Msg("failed to stage outbox item")
		return fmt.Errorf("failed to stage outbox item %s: %w", item.ID, err)
	}

	return nil
}

func (r *outboxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := sq.Delete("outbox_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build outbox delete: %w", err)
	}

	// No affected-rows check: deleting an already-reconciled item is the
	// normal outcome of the sweep racing the main path.
	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete outbox item %s: %w", id, err)
	}

	return nil
}

func (r *outboxRepository) ListOlderThan(ctx context.Context, userKey string, minAge time.Duration) ([]models.OutboxItem, error) {
	log := logger.FromContext(ctx)
	cutoff := time.Now().UTC().Add(-minAge)

	query, args, err := sq.Select(outboxColumns...).
		From("outbox_items").
		Where(sq.Eq{"user_key": userKey}).
		Where(sq.LtOrEq{"created_at": cutoff}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build outbox list query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "outboxRepository.ListOlderThan").
			Str("user_key", userKey).
			Msg("failed to list staged outbox items")
		return nil, fmt.Errorf("failed to list outbox items: %w", err)
	}
	defer rows.Close()

	var items []models.OutboxItem
	for rows.Next() {
		var item models.OutboxItem
		if err = rows.Scan(
			&item.ID,
			&item.UserKey,
			&item.TypeTag,
			&item.Payload,
			&item.PendingCursor,
			&item.FullExport,
			&item.Attempts,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *outboxRepository) IncrementAttempts(ctx context.Context, id string) error {
	query, args, err := sq.Update("outbox_items").
		Set("attempts", sq.Expr("attempts + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build outbox attempts update: %w", err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to count outbox attempt for %s: %w", id, err)
	}

	return nil
}

func (r *outboxRepository) DeleteForUser(ctx context.Context, userKey string) error {
	query, args, err := sq.Delete("outbox_items").Where(sq.Eq{"user_key": userKey}).ToSql()
	if err != nil {
		return fmt.Errorf("build outbox purge: %w", err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to purge outbox for user: %w", err)
	}

	return nil
}
