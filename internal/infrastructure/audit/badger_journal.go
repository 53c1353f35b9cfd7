package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"dam-inspection-system/internal/domain"
)

const (
	missionPrefix   = "mission/"
	telemetryPrefix = "telemetry/"
)

// JournalConfig налаштування вбудованого журналу
type JournalConfig struct {
	Path       string
	InMemory   bool
	SyncWrites bool
}

// BadgerJournal append-only журнал аудиту на badger. Ключі впорядковані за
// часом запису, тож зворотний обхід префікса дає новіші записи першими.
type BadgerJournal struct {
	db *badger.DB
}

// OpenBadgerJournal відкриває або створює журнал
func OpenBadgerJournal(cfg JournalConfig) (*BadgerJournal, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("path is required for persistent journal")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create journal directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger journal: %w", err)
	}
	return &BadgerJournal{db: db}, nil
}

// Close закриває базу
func (j *BadgerJournal) Close() error {
	return j.db.Close()
}

// RecordMission дописує місію
func (j *BadgerJournal) RecordMission(ctx context.Context, mission *domain.InspectionMission) error {
	at := mission.CreatedAt
	if mission.CompletedAt != nil {
		at = *mission.CompletedAt
	}
	return j.put(missionKey(at.UnixNano(), mission.ID.String()), mission)
}

// RecordTelemetry дописує оновлення телеметрії
func (j *BadgerJournal) RecordTelemetry(ctx context.Context, update *domain.TelemetryUpdate) error {
	return j.put(telemetryKey(update.Timestamp.UnixNano(), update.ID.String()), update)
}

// ListMissions повертає останні limit місій, новіші першими
func (j *BadgerJournal) ListMissions(ctx context.Context, limit int) ([]*domain.InspectionMission, error) {
	var out []*domain.InspectionMission
	err := j.scan(missionPrefix, limit, func(val []byte) error {
		var m domain.InspectionMission
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		out = append(out, &m)
		return nil
	})
	return out, err
}

// ListTelemetry повертає останні limit оновлень, новіші першими
func (j *BadgerJournal) ListTelemetry(ctx context.Context, limit int) ([]*domain.TelemetryUpdate, error) {
	var out []*domain.TelemetryUpdate
	err := j.scan(telemetryPrefix, limit, func(val []byte) error {
		var u domain.TelemetryUpdate
		if err := json.Unmarshal(val, &u); err != nil {
			return err
		}
		out = append(out, &u)
		return nil
	})
	return out, err
}

func (j *BadgerJournal) put(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	if err := j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	}); err != nil {
		return fmt.Errorf("write journal entry %s: %w", key, err)
	}
	return nil
}

func (j *BadgerJournal) scan(prefix string, limit int, decode func([]byte) error) error {
	return j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// У зворотному режимі Seek стає на останній ключ <= seek
		seek := append([]byte(prefix), 0xFF)
		n := 0
		for it.Seek(seek); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if limit > 0 && n >= limit {
				break
			}
			if err := it.Item().Value(decode); err != nil {
				return fmt.Errorf("read journal entry %s: %w", it.Item().Key(), err)
			}
			n++
		}
		return nil
	})
}

// Нулі зліва зберігають лексикографічний порядок ключів
func missionKey(nanos int64, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", missionPrefix, nanos, id))
}

func telemetryKey(nanos int64, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", telemetryPrefix, nanos, id))
}
