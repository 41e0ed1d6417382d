package character

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// AdjustCurrency adds Delta coins of one denomination; a purse never goes negative
type AdjustCurrency struct {
	Denomination shared.Denomination
	Delta        int
}

func (AdjustCurrency) Name() string { return "adjust_currency" }

func (a AdjustCurrency) Apply(c *Character) (*Character, Change, error) {
	d, err := shared.ParseDenomination(string(a.Denomination))
	if err != nil {
		return c, Change{}, dnderr.InvalidArgument(err.Error())
	}
	have := c.Currency.Get(d)
	if have+a.Delta < 0 {
		return c, Change{}, dnderr.InsufficientFundsf("have %d %s, need %d", have, d, -a.Delta).
			WithMeta("denomination", string(d))
	}
	if a.Delta == 0 {
		return c, Change{}, nil
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.Currency = next.Currency.With(d, have+a.Delta)
		return Change{Fields: []Field{FieldCurrency}}, nil
	})
}

// ConvertCurrency exchanges Amount coins of From into To. Coins that cannot
// buy a whole coin of To stay where they are.
type ConvertCurrency struct {
	From   shared.Denomination
	To     shared.Denomination
	Amount int
}

func (ConvertCurrency) Name() string { return "convert_currency" }

func (cc ConvertCurrency) Apply(c *Character) (*Character, Change, error) {
	from, err := shared.ParseDenomination(string(cc.From))
	if err != nil {
		return c, Change{}, dnderr.InvalidArgument(err.Error())
	}
	to, err := shared.ParseDenomination(string(cc.To))
	if err != nil {
		return c, Change{}, dnderr.InvalidArgument(err.Error())
	}
	if from == to || cc.Amount <= 0 {
		return c, Change{}, dnderr.InvalidArgumentf("cannot convert %d %s to %s", cc.Amount, from, to)
	}
	if c.Currency.Get(from) < cc.Amount {
		return c, Change{}, dnderr.InsufficientFundsf("have %d %s, need %d", c.Currency.Get(from), from, cc.Amount).
			WithMeta("denomination", string(from))
	}
	purse, _, ok := c.Currency.Convert(from, to, cc.Amount)
	if !ok {
		return c, Change{}, dnderr.InvalidArgumentf("%d %s is not enough for one %s", cc.Amount, from, to)
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.Currency = purse
		return Change{Fields: []Field{FieldCurrency}}, nil
	})
}
