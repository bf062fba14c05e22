package command

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatterMoney(t *testing.T) {
	f := NewFormatter("en", "đ")
	assert.Equal(t, "1,500,000 đ", f.Money(1500000))
	assert.Equal(t, "0 đ", f.Money(0))
	assert.Equal(t, "-2,001 đ", f.Money(-2000.6))

	usd := NewFormatter("en", "USD")
	assert.Equal(t, "12 USD", usd.Money(12.4))

	fallback := NewFormatter("en", "")
	assert.Equal(t, "5 đ", fallback.Money(5))
}

func TestFormatterMoneyClampsOutOfRange(t *testing.T) {
	f := NewFormatter("en", "đ")
	assert.Equal(t, "1,000,000,000,000,000,000 đ", f.Money(1e30))
	assert.Equal(t, "-1,000,000,000,000,000,000 đ", f.Money(math.Inf(-1)))
	assert.Equal(t, "0 đ", f.Money(math.NaN()))
	assert.Equal(t, "1,000,000,000,000,000 đ", f.Money(1e15))
}
