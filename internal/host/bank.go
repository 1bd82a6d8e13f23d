package host

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// ErrInsufficientFunds is returned when a transfer exceeds the payer's balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

type balanceKey struct {
	owner Addr
	denom string
}

func (k balanceKey) Bytes() []byte {
	out := make([]byte, 0, len(k.owner)+len(k.denom))
	out = append(out, k.owner.Bytes()...)
	return append(out, k.denom...)
}

var balances = NewMap[balanceKey, *uint256.Int]("bank_balances")

func balanceOf(s Storage, owner Addr, denom string) (*uint256.Int, error) {
	v, err := balances.MayLoad(s, balanceKey{owner: owner, denom: denom})
	if err != nil {
		return nil, err
	}
	if v == nil || *v == nil {
		return new(uint256.Int), nil
	}
	return *v, nil
}

func credit(s Storage, to Addr, coins Coins) error {
	for _, c := range coins {
		if c.IsZero() {
			continue
		}
		bal, err := balanceOf(s, to, c.Denom)
		if err != nil {
			return err
		}
		sum, overflow := new(uint256.Int).AddOverflow(bal, c.Amount)
		if overflow {
			return fmt.Errorf("balance overflow for %s %s", to.Hex(), c.Denom)
		}
		if err := balances.Save(s, balanceKey{owner: to, denom: c.Denom}, sum); err != nil {
			return err
		}
	}
	return nil
}

func debit(s Storage, from Addr, coins Coins) error {
	for _, c := range coins {
		if c.IsZero() {
			continue
		}
		bal, err := balanceOf(s, from, c.Denom)
		if err != nil {
			return err
		}
		if bal.Lt(c.Amount) {
			return fmt.Errorf("%w: %s has %s%s, needs %s", ErrInsufficientFunds, from.Hex(), bal.Dec(), c.Denom, c.String())
		}
		rest := new(uint256.Int).Sub(bal, c.Amount)
		key := balanceKey{owner: from, denom: c.Denom}
		if rest.IsZero() {
			if err := balances.Remove(s, key); err != nil {
				return err
			}
			continue
		}
		if err := balances.Save(s, key, rest); err != nil {
			return err
		}
	}
	return nil
}

func transfer(s Storage, from, to Addr, coins Coins) error {
	if err := debit(s, from, coins); err != nil {
		return err
	}
	return credit(s, to, coins)
}
