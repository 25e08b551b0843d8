package model

import (
	"database/sql/driver"
	"fmt"
	"math/big"
)

// BigInt wraps math/big.Int so token amounts survive a round trip through
// the database as exact decimal strings. Never store amounts as floats.
type BigInt struct {
	big.Int
}

// NewBigInt copies x into a fresh BigInt. A nil x becomes zero.
func NewBigInt(x *big.Int) *BigInt {
	b := &BigInt{}
	if x != nil {
		b.Set(x)
	}
	return b
}

// Big returns a copy of the wrapped value. Safe to mutate.
func (b *BigInt) Big() *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(&b.Int)
}

// Value implements driver.Valuer.
func (b *BigInt) Value() (driver.Value, error) {
	if b == nil {
		return "0", nil
	}
	return b.String(), nil
}

// Scan implements sql.Scanner.
func (b *BigInt) Scan(value interface{}) error {
	if value == nil {
		b.SetInt64(0)
		return nil
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		b.SetInt64(v)
		return nil
	default:
		return fmt.Errorf("model: cannot scan %T into BigInt", value)
	}

	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("model: invalid integer literal %q", s)
	}
	return nil
}

// GormDataType tells gorm to use a plain string column.
func (BigInt) GormDataType() string {
	return "string"
}
