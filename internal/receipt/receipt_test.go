package receipt_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/emicollect/internal/receipt"
)

func TestMessage(t *testing.T) {
	got := receipt.Message("Ravi Kumar", decimal.NewFromInt(300), "Sewing machine", decimal.NewFromInt(700))

	assert.Equal(t,
		"Payment Received: ₹300.00\nFrom: Ravi Kumar\nFor: Sewing machine\nBalance Remaining: ₹700.00\n\nThanks!",
		got)
}
