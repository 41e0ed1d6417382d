package character

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
)

// Command is a pure state transition. Apply never modifies its input: it
// returns a new snapshot and what changed, or the input and an error.
type Command interface {
	Name() string
	Apply(c *Character) (*Character, Change, error)
}

// mutate clones c, runs fn against the clone and returns the input untouched
// if fn fails.
func mutate(c *Character, fn func(next *Character) (Change, error)) (*Character, Change, error) {
	next := c.Clone()
	next.ensureMaps()
	ch, err := fn(next)
	if err != nil {
		return c, Change{}, err
	}
	return next, ch, nil
}

// Execute applies commands in order as one unit. If any command fails the
// input is returned with an empty change, as if none had run.
func Execute(c *Character, cmds ...Command) (*Character, Change, error) {
	cur := c
	var total Change
	for _, cmd := range cmds {
		next, ch, err := cmd.Apply(cur)
		if err != nil {
			return c, Change{}, err
		}
		cur = next
		total = total.Merge(ch)
	}
	return cur, total, nil
}

func inventoryChange(t equipment.Transition) Change {
	return Change{
		Entries: append([]string(nil), t.Changed...),
		Removed: append([]string(nil), t.Removed...),
	}
}

func removeEntry(inv equipment.Inventory, id string) equipment.Inventory {
	out := make(equipment.Inventory, 0, len(inv))
	for _, e := range inv {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
