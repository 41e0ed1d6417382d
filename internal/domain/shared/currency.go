package shared

import (
	"fmt"
	"strings"
)

// Denomination is a coin type
type Denomination string

const (
	Copper   Denomination = "cp"
	Silver   Denomination = "sp"
	Electrum Denomination = "ep"
	Gold     Denomination = "gp"
	Platinum Denomination = "pp"
)

var Denominations = []Denomination{Copper, Silver, Electrum, Gold, Platinum}

// copper value of one coin
var denominationValue = map[Denomination]int{
	Copper:   1,
	Silver:   10,
	Electrum: 50,
	Gold:     100,
	Platinum: 1000,
}

// ParseDenomination accepts "gp", "GP", "gold" and the like
func ParseDenomination(s string) (Denomination, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "cp", "copper":
		return Copper, nil
	case "sp", "silver":
		return Silver, nil
	case "ep", "electrum":
		return Electrum, nil
	case "gp", "gold":
		return Gold, nil
	case "pp", "platinum":
		return Platinum, nil
	}
	return "", fmt.Errorf("unknown denomination %q", s)
}

// CopperValue returns how many copper pieces one coin is worth
func (d Denomination) CopperValue() int {
	return denominationValue[d]
}

// Currency is a coin purse
type Currency struct {
	CP int `json:"cp"`
	SP int `json:"sp"`
	EP int `json:"ep"`
	GP int `json:"gp"`
	PP int `json:"pp"`
}

// Get returns the number of coins of one denomination
func (c Currency) Get(d Denomination) int {
	switch d {
	case Copper:
		return c.CP
	case Silver:
		return c.SP
	case Electrum:
		return c.EP
	case Gold:
		return c.GP
	case Platinum:
		return c.PP
	}
	return 0
}

// With returns a copy with one denomination replaced
func (c Currency) With(d Denomination, amount int) Currency {
	switch d {
	case Copper:
		c.CP = amount
	case Silver:
		c.SP = amount
	case Electrum:
		c.EP = amount
	case Gold:
		c.GP = amount
	case Platinum:
		c.PP = amount
	}
	return c
}

// TotalCopper is the purse value expressed in copper
func (c Currency) TotalCopper() int {
	total := 0
	for _, d := range Denominations {
		total += c.Get(d) * d.CopperValue()
	}
	return total
}

// Convert exchanges amount coins of from into as many coins of to as they cover.
// Any remainder that cannot buy a whole coin stays in from. ok is false when the
// purse holds fewer than amount coins or amount is too small to buy one coin.
func (c Currency) Convert(from, to Denomination, amount int) (Currency, int, bool) {
	if amount <= 0 || c.Get(from) < amount || from.CopperValue() == 0 || to.CopperValue() == 0 {
		return c, 0, false
	}

	converted := amount * from.CopperValue() / to.CopperValue()
	if converted == 0 {
		return c, 0, false
	}
	spent := converted * to.CopperValue() / from.CopperValue()

	next := c.With(from, c.Get(from)-spent)
	next = next.With(to, next.Get(to)+converted)
	return next, converted, true
}
