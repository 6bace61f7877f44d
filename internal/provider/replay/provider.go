// Package replay implements provider.Provider over a directory of per-type
// JSON record files. It stands in for the platform health store during
// development and in integration tests: records are paged through the same
// cursor contract a live source would use, so the whole engine can be
// exercised end to end against files on disk.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/the-momentum/open-wearables-sync/internal/provider"
	"github.com/the-momentum/open-wearables-sync/models"
)

type replayProvider struct {
	dir string
}

// New returns a provider reading <dir>/<type>.json files. Each file holds a
// JSON array of [models.Record]. An optional <type>.deleted.json file holds
// a JSON array of deleted sample ids, surfaced with the first batch.
func New(dir string) provider.Provider {
	return &replayProvider{dir: dir}
}

func (p *replayProvider) Query(ctx context.Context, recordType models.RecordType, cursor string, limit int) (provider.Batch, error) {
	if err := ctx.Err(); err != nil {
		return provider.Batch{}, err
	}
	if limit <= 0 {
		return provider.Batch{}, fmt.Errorf("non-positive query limit %d", limit)
	}

	records, err := p.loadRecords(recordType)
	if err != nil {
		return provider.Batch{}, err
	}

	offset, err := decodeCursor(cursor)
	if err != nil {
		return provider.Batch{}, err
	}
	if offset > len(records) {
		offset = len(records)
	}

	end := offset + limit
	if end > len(records) {
		end = len(records)
	}

	batch := provider.Batch{
		Records:    records[offset:end],
		NextCursor: strconv.Itoa(end),
	}

	// Deletions ride along with the first window of the feed.
	if offset == 0 && end > offset {
		deleted, err := p.loadDeleted(recordType)
		if err != nil {
			return provider.Batch{}, err
		}
		batch.DeletedIDs = deleted
	}

	return batch, nil
}

func (p *replayProvider) loadRecords(recordType models.RecordType) ([]models.Record, error) {
	path := filepath.Join(p.dir, recordType.String()+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No file means no history for this type.
			return nil, nil
		}
		return nil, fmt.Errorf("read replay file for %s: %w", recordType, err)
	}

	var records []models.Record
	if err = json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode replay file for %s: %w", recordType, err)
	}

	for i := range records {
		if records[i].Type == "" {
			records[i].Type = recordType
		}
	}

	return records, nil
}

func (p *replayProvider) loadDeleted(recordType models.RecordType) ([]string, error) {
	path := filepath.Join(p.dir, recordType.String()+".deleted.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read replay deletions for %s: %w", recordType, err)
	}

	var ids []string
	if err = json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode replay deletions for %s: %w", recordType, err)
	}

	return ids, nil
}

func decodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(cursor)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("malformed replay cursor %q", cursor)
	}

	return offset, nil
}
