package receipt

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Message renders the share text sent to a customer after a settlement.
// Dispatch (WhatsApp or otherwise) is up to the client.
func Message(customerName string, amount decimal.Decimal, itemName string, balance decimal.Decimal) string {
	return fmt.Sprintf(
		"Payment Received: ₹%s\nFrom: %s\nFor: %s\nBalance Remaining: ₹%s\n\nThanks!",
		amount.StringFixed(2), customerName, itemName, balance.StringFixed(2),
	)
}
