package characters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/character"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// row is one stored column or join row, already serialized
type row struct {
	key   string
	value string
}

func fieldRows(char *character.Character, fields []character.Field) ([]row, error) {
	rows := make([]row, 0, len(fields))
	for _, f := range fields {
		data, err := char.EncodeField(f)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row{key: string(f), value: string(data)})
	}
	return rows, nil
}

func entryRow(e *equipment.Entry) (row, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return row{}, dnderr.WrapWithCode(err, dnderr.CodeInternal, fmt.Sprintf("failed to marshal inventory entry %s", e.ID)).
			WithMeta("entry_id", e.ID)
	}
	return row{key: e.ID, value: string(data)}, nil
}

func entryRows(inv equipment.Inventory) ([]row, error) {
	rows := make([]row, 0, len(inv))
	for _, e := range inv {
		r, err := entryRow(e)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// usageRows drops zero rows; a missing row means unused
func usageRows(usage map[string]int) []row {
	rows := make([]row, 0, len(usage))
	for key, used := range usage {
		if used > 0 {
			rows = append(rows, row{key: key, value: strconv.Itoa(used)})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].key < rows[j].key })
	return rows
}

// changeRows splits a change into rows to write and row keys to delete
type changeRows struct {
	fields         []row
	entries        []row
	removedEntries []string
	usage          []row
	clearedUsage   []string
}

func rowsForChange(change character.Change, snapshot *character.Character) (changeRows, error) {
	var out changeRows
	var err error

	if out.fields, err = fieldRows(snapshot, change.Fields); err != nil {
		return changeRows{}, err
	}

	for _, id := range change.Entries {
		e, ok := snapshot.Inventory.Get(id)
		if !ok {
			// merged or dropped after the change was recorded
			out.removedEntries = append(out.removedEntries, id)
			continue
		}
		r, err := entryRow(e)
		if err != nil {
			return changeRows{}, err
		}
		out.entries = append(out.entries, r)
	}
	out.removedEntries = append(out.removedEntries, change.Removed...)

	for _, key := range change.Resources {
		if used := snapshot.ResourceUsage[key]; used > 0 {
			out.usage = append(out.usage, row{key: key, value: strconv.Itoa(used)})
		} else {
			out.clearedUsage = append(out.clearedUsage, key)
		}
	}
	return out, nil
}

// decodeCharacter rebuilds a snapshot from stored rows. Unknown columns and
// unreadable inventory rows are skipped with a warning so one bad row does not
// lock a character out.
func decodeCharacter(id string, fields, entries, usage map[string]string, logger *zap.Logger) (*character.Character, error) {
	char := character.New(id, "", "")

	known := make(map[string]bool, len(character.AllFields))
	for _, f := range character.AllFields {
		known[string(f)] = true
	}
	for name, value := range fields {
		if !known[name] {
			continue
		}
		if err := char.DecodeField(character.Field(name), []byte(value)); err != nil {
			return nil, dnderr.Wrapf(err, "failed to decode character %s", id).
				WithMeta("character_id", id)
		}
	}

	ids := make([]string, 0, len(entries))
	for entryID := range entries {
		ids = append(ids, entryID)
	}
	sort.Strings(ids)
	for _, entryID := range ids {
		var e equipment.Entry
		if err := json.Unmarshal([]byte(entries[entryID]), &e); err != nil || e.Item == nil {
			logger.Warn("skipping unreadable inventory entry",
				zap.String("character_id", id),
				zap.String("entry_id", entryID),
				zap.Error(err))
			continue
		}
		char.Inventory = append(char.Inventory, &e)
	}

	for key, raw := range usage {
		used, err := strconv.Atoi(raw)
		if err != nil {
			logger.Warn("skipping unreadable resource usage",
				zap.String("character_id", id),
				zap.String("resource", key),
				zap.String("value", raw))
			continue
		}
		if used > 0 {
			char.ResourceUsage[key] = used
		}
	}
	return char, nil
}

func parseUsage(raw map[string]string) map[string]int {
	out := make(map[string]int, len(raw))
	for key, v := range raw {
		if used, err := strconv.Atoi(v); err == nil && used > 0 {
			out[key] = used
		}
	}
	return out
}

func hashArgs(rows []row) []any {
	args := make([]any, 0, 2*len(rows))
	for _, r := range rows {
		args = append(args, r.key, r.value)
	}
	return args
}

func jsonString(raw string, out *string) error {
	return json.Unmarshal([]byte(raw), out)
}
