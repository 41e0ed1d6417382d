package characters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/character"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
	"github.com/KirkDiggler/dnd-character-sheet/internal/repositories/characters/migrations"
)

// SQLiteStore persists characters as one row per column, inventory entry
// and resource-usage counter.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens a SQLite character store and applies embedded migrations.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, char *character.Character) error {
	if err := validateNew(char); err != nil {
		return err
	}
	fields, err := fieldRows(char, character.AllFields)
	if err != nil {
		return fmt.Errorf("failed to encode character: %w", err)
	}
	entries, err := entryRows(char.Inventory)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().UnixMilli()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO characters (id, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			char.ID, char.OwnerID, now, now,
		); err != nil {
			if isUniqueViolation(err) {
				return dnderr.AlreadyExistsf("character with ID '%s' already exists", char.ID).
					WithMeta("character_id", char.ID)
			}
			return fmt.Errorf("create character: %w", err)
		}
		if err := upsertFields(ctx, tx, char.ID, fields); err != nil {
			return err
		}
		if err := upsertEntries(ctx, tx, char.ID, entries); err != nil {
			return err
		}
		return upsertUsage(ctx, tx, char.ID, usageRows(char.ResourceUsage))
	})
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*character.Character, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("character ID is required")
	}

	var char *character.Character
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := requireCharacter(ctx, tx, id); err != nil {
			return err
		}
		fields, err := queryPairs(ctx, tx, `SELECT name, value FROM character_fields WHERE character_id = ?`, id)
		if err != nil {
			return fmt.Errorf("get character fields: %w", err)
		}
		entries, err := queryPairs(ctx, tx, `SELECT entry_id, data FROM inventory_entries WHERE character_id = ?`, id)
		if err != nil {
			return fmt.Errorf("get inventory: %w", err)
		}
		usage, err := queryPairs(ctx, tx, `SELECT resource_key, CAST(used AS TEXT) FROM resource_usage WHERE character_id = ?`, id)
		if err != nil {
			return fmt.Errorf("get resource usage: %w", err)
		}
		char, err = decodeCharacter(id, fields, entries, usage, s.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return char, nil
}

func (s *SQLiteStore) List(ctx context.Context, ownerID string) ([]string, error) {
	if ownerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM characters WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan character id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dnderr.InvalidArgument("character ID is required")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := requireCharacter(ctx, tx, id); err != nil {
			return err
		}
		// child rows go explicitly; the cascade only fires with foreign_keys on
		for _, table := range []string{"character_fields", "inventory_entries", "resource_usage", "characters"} {
			column := "character_id"
			if table == "characters" {
				column = "id"
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+column+` = ?`, id); err != nil {
				return fmt.Errorf("delete from %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Apply(ctx context.Context, id string, change character.Change, snapshot *character.Character) error {
	if id == "" {
		return dnderr.InvalidArgument("character ID is required")
	}
	if snapshot == nil {
		return dnderr.InvalidArgument("snapshot is required")
	}
	if change.IsEmpty() {
		return nil
	}
	rows, err := rowsForChange(change, snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := touchCharacter(ctx, tx, id); err != nil {
			return err
		}
		for _, f := range change.Fields {
			if f != character.FieldOwner {
				continue
			}
			if _, err := tx.ExecContext(ctx, `UPDATE characters SET owner_id = ? WHERE id = ?`, snapshot.OwnerID, id); err != nil {
				return fmt.Errorf("update owner: %w", err)
			}
		}
		if err := upsertFields(ctx, tx, id, rows.fields); err != nil {
			return err
		}
		if err := upsertEntries(ctx, tx, id, rows.entries); err != nil {
			return err
		}
		for _, entryID := range rows.removedEntries {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM inventory_entries WHERE character_id = ? AND entry_id = ?`, id, entryID,
			); err != nil {
				return fmt.Errorf("delete inventory entry: %w", err)
			}
		}
		if err := upsertUsage(ctx, tx, id, rows.usage); err != nil {
			return err
		}
		return deleteUsage(ctx, tx, id, rows.clearedUsage)
	})
}

func (s *SQLiteStore) ShortRest(ctx context.Context, id string, input ShortRestInput) (map[string]int, error) {
	var usage map[string]int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := touchCharacter(ctx, tx, id); err != nil {
			return err
		}
		if err := deleteUsage(ctx, tx, id, input.ResourceKeys); err != nil {
			return err
		}
		var err error
		usage, err = readUsage(ctx, tx, id)
		return err
	})
	return usage, err
}

func (s *SQLiteStore) LongRest(ctx context.Context, id string) (map[string]int, error) {
	var usage map[string]int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := touchCharacter(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM resource_usage WHERE character_id = ?`, id); err != nil {
			return fmt.Errorf("reset resource usage: %w", err)
		}
		var err error
		usage, err = readUsage(ctx, tx, id)
		return err
	})
	return usage, err
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func requireCharacter(ctx context.Context, tx *sql.Tx, id string) error {
	var found string
	err := tx.QueryRowContext(ctx, `SELECT id FROM characters WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(id)
	}
	if err != nil {
		return fmt.Errorf("get character: %w", err)
	}
	return nil
}

// touchCharacter bumps updated_at and fails for unknown characters
func touchCharacter(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `UPDATE characters SET updated_at = ? WHERE id = ?`, time.Now().UTC().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("touch character: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

func upsertFields(ctx context.Context, tx *sql.Tx, id string, rows []row) error {
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO character_fields (character_id, name, value) VALUES (?, ?, ?)
			 ON CONFLICT (character_id, name) DO UPDATE SET value = excluded.value`,
			id, r.key, r.value,
		); err != nil {
			return fmt.Errorf("write field %s: %w", r.key, err)
		}
	}
	return nil
}

func upsertEntries(ctx context.Context, tx *sql.Tx, id string, rows []row) error {
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inventory_entries (character_id, entry_id, data) VALUES (?, ?, ?)
			 ON CONFLICT (character_id, entry_id) DO UPDATE SET data = excluded.data`,
			id, r.key, r.value,
		); err != nil {
			return fmt.Errorf("write inventory entry %s: %w", r.key, err)
		}
	}
	return nil
}

func upsertUsage(ctx context.Context, tx *sql.Tx, id string, rows []row) error {
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO resource_usage (character_id, resource_key, used) VALUES (?, ?, CAST(? AS INTEGER))
			 ON CONFLICT (character_id, resource_key) DO UPDATE SET used = excluded.used`,
			id, r.key, r.value,
		); err != nil {
			return fmt.Errorf("write resource usage %s: %w", r.key, err)
		}
	}
	return nil
}

func deleteUsage(ctx context.Context, tx *sql.Tx, id string, keys []string) error {
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM resource_usage WHERE character_id = ? AND resource_key = ?`, id, key,
		); err != nil {
			return fmt.Errorf("reset resource usage %s: %w", key, err)
		}
	}
	return nil
}

func readUsage(ctx context.Context, tx *sql.Tx, id string) (map[string]int, error) {
	raw, err := queryPairs(ctx, tx, `SELECT resource_key, CAST(used AS TEXT) FROM resource_usage WHERE character_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("read resource usage: %w", err)
	}
	return parseUsage(raw), nil
}

func queryPairs(ctx context.Context, tx *sql.Tx, query string, args ...any) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ Repository = (*SQLiteStore)(nil)
var _ Repository = (*InMemoryRepository)(nil)
