package btcfolio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Arithmetic(t *testing.T) {
	m := M(9000, "EUR").Add(EUR(5))
	assert.True(t, m.Equal(EUR(9005)))
	assert.True(t, m.Sub(EUR(5)).Equal(EUR(9000)))
	assert.True(t, EUR(50000).Mul(Q(0.5)).Equal(EUR(25000)))
	assert.True(t, EUR(9005).Div(Q(0.1)).Equal(EUR(90050)))

	// zero denominators
	assert.True(t, EUR(9005).Div(Q(0)).IsZero())
	assert.True(t, EUR(9005).Ratio(EUR(0)).IsZero())

	// the empty currency takes the other one
	assert.Equal(t, "EUR", M(1, "").Add(EUR(1)).Currency())
	assert.Panics(t, func() { EUR(1).Add(M(1, "USD")) })
}

func TestMoney_SignedString(t *testing.T) {
	assert.Equal(t, "-", EUR(0).SignedString())
	assert.Equal(t, "+"+EUR(12).String(), EUR(12).SignedString())
	assert.Equal(t, EUR(-12).String(), EUR(-12).SignedString())
}

func TestMoney_JSON(t *testing.T) {
	got, err := json.Marshal(M(dec("12.50"), "EUR"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"EUR","amount":12.5}`, string(got))
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("97709.5", "EUR")
	require.NoError(t, err)
	assert.True(t, m.Equal(EUR(97709.5)))

	_, err = ParseMoney("abc", "EUR")
	assert.Error(t, err)
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity("0.00020400")
	require.NoError(t, err)
	assert.True(t, q.Equal(Q(0.000204)))
	assert.Equal(t, "0.00020400", q.Fixed(8))

	_, err = ParseQuantity("")
	assert.Error(t, err)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "24.79%", Percent(24.7920133111).String())
	assert.Equal(t, "+24.79%", Percent(24.7920133111).SignedString())
	assert.Equal(t, "-3.10%", Percent(-3.1).SignedString())
	assert.Equal(t, "-", Percent(0).SignedString())
	assert.True(t, Percent(1.00001).Equal(1))
}
