package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Money is an amount in minor currency units (two decimal places).
type Money int64

const minorPerMajor = 100

var ErrMoneyOverflow = errors.New("money overflow")

func FromMajor(units int64) Money {
	return Money(units * minorPerMajor)
}

// maxExponent bounds the exponent of amounts written like "4.5e3".
const maxExponent = 64

// ParseMoney parses a decimal amount such as "4500", "4500.5", "-12.75" or "4.5e3".
// Amounts with more than two significant decimals are rejected, never rounded.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse money: empty amount")
	}
	body, neg := s, false
	switch body[0] {
	case '-':
		neg = true
		body = body[1:]
	case '+':
		body = body[1:]
	}

	mantissa, exp := body, 0
	if i := strings.IndexAny(body, "eE"); i >= 0 {
		mantissa = body[:i]
		e, err := strconv.Atoi(body[i+1:])
		if err != nil || e > maxExponent || e < -maxExponent {
			return 0, fmt.Errorf("parse money: invalid exponent in %q", s)
		}
		exp = e
	}

	whole, frac, _ := strings.Cut(mantissa, ".")
	if (whole == "" && frac == "") || !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("parse money: %q is not a number", s)
	}

	// digits * 10^shift is the amount in minor units.
	digits := strings.TrimLeft(whole+frac, "0")
	shift := exp + 2 - len(frac)
	switch {
	case shift < 0:
		cut := len(digits) + shift
		if cut < 0 {
			cut = 0
		}
		if strings.Trim(digits[cut:], "0") != "" {
			return 0, fmt.Errorf("parse money: %q has more than two decimals", s)
		}
		digits = digits[:cut]
	case shift > 0 && digits != "":
		digits += strings.Repeat("0", shift)
	}
	if digits == "" {
		return 0, nil
	}

	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrMoneyOverflow
	}
	if neg {
		v = -v
	}
	return Money(v), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/minorPerMajor, v%minorPerMajor)
}

// Add returns m+o and fails instead of wrapping around.
func (m Money) Add(o Money) (Money, error) {
	if (o > 0 && m > math.MaxInt64-o) || (o < 0 && m < math.MinInt64-o) {
		return 0, ErrMoneyOverflow
	}
	return m + o, nil
}

// MulDiv returns m*num/den rounded half away from zero. Only this final division rounds.
func (m Money) MulDiv(num, den int64) (Money, error) {
	if den <= 0 {
		return 0, fmt.Errorf("money: non-positive divisor %d", den)
	}
	if num < 0 {
		return 0, fmt.Errorf("money: negative multiplier %d", num)
	}
	v := int64(m)
	if num != 0 && (v > math.MaxInt64/num || v < math.MinInt64/num) {
		return 0, ErrMoneyOverflow
	}
	p := v * num
	q, r := p/den, p%den
	if r < 0 {
		r = -r
	}
	if 2*r >= den {
		if p < 0 {
			q--
		} else {
			q++
		}
	}
	return Money(q), nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseMoney(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = v
	return nil
}
