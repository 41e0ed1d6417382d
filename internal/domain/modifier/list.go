package modifier

import (
	"encoding/json"
	"errors"
)

// List is a modifier slice with a lenient wire encoding.
type List []Modifier

// ParseList converts wire modifiers, dropping malformed entries. The dropped
// entries are returned as errors so the caller can report them.
func ParseList(raws []Raw) (List, []error) {
	out := make(List, 0, len(raws))
	var errs []error
	for _, r := range raws {
		m, err := FromRaw(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, m)
	}
	return out, errs
}

// Raws converts the list to its wire form
func (l List) Raws() []Raw {
	out := make([]Raw, 0, len(l))
	for _, m := range l {
		if m == nil {
			continue
		}
		out = append(out, ToRaw(m))
	}
	return out
}

// MarshalJSON encodes through Raw
func (l List) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Raws())
}

// UnmarshalJSON decodes through Raw; malformed entries are dropped.
func (l *List) UnmarshalJSON(data []byte) error {
	var raws []Raw
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	parsed, _ := ParseList(raws)
	*l = parsed
	return nil
}

// Validate returns the combined error of every malformed entry, or nil.
func Validate(raws []Raw) error {
	_, errs := ParseList(raws)
	return errors.Join(errs...)
}
