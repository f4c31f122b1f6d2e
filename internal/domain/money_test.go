package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    Money
		wantErr bool
	}{
		{in: "4500", want: 450000},
		{in: "4500.5", want: 450050},
		{in: "4500.05", want: 450005},
		{in: "-12.75", want: -1275},
		{in: ".5", want: 50},
		{in: "1.234", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "-", wantErr: true},
		{in: "4.5e3", want: 450000},
		{in: "1E2", want: 10000},
		{in: "1e-2", want: 1},
		{in: "125e-2", want: 125},
		{in: "0.000", want: 0},
		{in: "4500.", want: 450000},
		{in: "1.5e-3", wantErr: true},
		{in: "1e", wantErr: true},
		{in: "1e999", wantErr: true},
		{in: "--5", wantErr: true},
		{in: "-+5", wantErr: true},
		{in: "+-5", wantErr: true},
		{in: "1.+5", wantErr: true},
		{in: "1.-5", wantErr: true},
		{in: "1 000", wantErr: true},
		{in: "0x10", wantErr: true},
		{in: "99999999999999999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "4500.00", FromMajor(4500).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-12.75", Money(-1275).String())
}

func TestMoney_MulDiv(t *testing.T) {
	// 4500.00 * 0.5
	got, err := FromMajor(4500).MulDiv(50, 100)
	require.NoError(t, err)
	assert.Equal(t, FromMajor(2250), got)

	// 0.05 * 0.5 = 0.025 -> 0.03
	got, err = Money(5).MulDiv(50, 100)
	require.NoError(t, err)
	assert.Equal(t, Money(3), got)

	// 0.05 * 0.1 = 0.005 -> 0.01
	got, err = Money(5).MulDiv(10, 100)
	require.NoError(t, err)
	assert.Equal(t, Money(1), got)

	_, err = Money(math.MaxInt64/2).MulDiv(3, 1)
	assert.ErrorIs(t, err, ErrMoneyOverflow)

	_, err = Money(1).MulDiv(1, 0)
	assert.Error(t, err)
}

func TestMoney_Add(t *testing.T) {
	got, err := Money(100).Add(Money(250))
	require.NoError(t, err)
	assert.Equal(t, Money(350), got)

	_, err = Money(math.MaxInt64).Add(1)
	assert.ErrorIs(t, err, ErrMoneyOverflow)
}

func TestMoney_JSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: MustParseMoney("5390.50")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price": 5390.50}`, string(payload))

	var decoded struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 4500, "b": "890.10"}`), &decoded))
	assert.Equal(t, FromMajor(4500), decoded.A)
	assert.Equal(t, Money(89010), decoded.B)

	require.NoError(t, json.Unmarshal([]byte(`{"a": 4.5e3, "b": 1E1}`), &decoded))
	assert.Equal(t, FromMajor(4500), decoded.A)
	assert.Equal(t, FromMajor(10), decoded.B)

	err = json.Unmarshal([]byte(`{"a": "--4500"}`), &decoded)
	assert.Error(t, err)
}

func TestMoney_YAML(t *testing.T) {
	var decoded struct {
		Base Money `yaml:"base"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("base: 12000.50\n"), &decoded))
	assert.Equal(t, Money(1200050), decoded.Base)

	err := yaml.Unmarshal([]byte("base: twelve\n"), &decoded)
	assert.Error(t, err)
}
