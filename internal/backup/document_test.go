package backup_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/emicollect/internal/backup"
	"github.com/MrJamesThe3rd/emicollect/internal/customer"
	"github.com/MrJamesThe3rd/emicollect/internal/loan"
)

func sampleRecords() ([]*customer.Customer, []*loan.Loan, []*loan.Payment) {
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	due := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	customers := []*customer.Customer{
		{ID: 1, Name: "Ravi", Phone: "9876543210", Address: "14 Market Road", Frequency: customer.FrequencyWeekly, CreatedAt: created},
	}
	loans := []*loan.Loan{
		{
			ID: 10, CustomerID: 1, ItemName: "Television",
			TotalPrincipal: decimal.NewFromInt(8000), DownPayment: decimal.NewFromInt(1000),
			CurrentBalance: decimal.NewFromInt(7000), Frequency: loan.FrequencyMonthly,
			NextDueDate: due,
		},
	}
	payments := []*loan.Payment{
		{ID: uuid.New(), LoanID: 10, AmountPaid: decimal.NewFromInt(500), DatePaid: created.AddDate(0, 0, 7)},
	}

	return customers, loans, payments
}

func TestDocument_RoundTrip(t *testing.T) {
	customers, loans, payments := sampleRecords()
	at := time.Date(2024, 3, 4, 18, 30, 0, 0, time.UTC)

	data, err := backup.NewDocument(customers, loans, payments, at).Encode()
	require.NoError(t, err)

	doc, err := backup.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), doc.Timestamp)

	gotCustomers, gotLoans, gotPayments, err := doc.Records()
	require.NoError(t, err)

	require.Len(t, gotCustomers, 1)
	assert.Equal(t, customers[0], gotCustomers[0])

	require.Len(t, gotLoans, 1)
	assert.Equal(t, loans[0].ID, gotLoans[0].ID)
	assert.True(t, gotLoans[0].CurrentBalance.Equal(loans[0].CurrentBalance))
	assert.Equal(t, loans[0].NextDueDate, gotLoans[0].NextDueDate)
	assert.Equal(t, loan.FrequencyMonthly, gotLoans[0].Frequency)

	require.Len(t, gotPayments, 1)
	assert.Equal(t, payments[0].ID, gotPayments[0].ID)
	assert.True(t, gotPayments[0].AmountPaid.Equal(payments[0].AmountPaid))
}

func TestDocument_WireFormat(t *testing.T) {
	customers, loans, payments := sampleRecords()
	at := time.Date(2024, 3, 4, 18, 30, 0, 0, time.UTC)

	data, err := backup.NewDocument(customers, loans, payments, at).Encode()
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	// Exactly the four top-level fields of the transfer format.
	assert.Len(t, raw, 4)

	for _, key := range []string{"customers", "loans", "transactions", "timestamp"} {
		assert.Contains(t, raw, key)
	}

	var ls []map[string]any
	require.NoError(t, json.Unmarshal(raw["loans"], &ls))
	require.Len(t, ls, 1)

	// Enums as name strings, dates as integer milliseconds.
	assert.Equal(t, "MONTHLY", ls[0]["emiFrequency"])
	assert.EqualValues(t, loans[0].NextDueDate.UnixMilli(), ls[0]["nextDueDate"])
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "NotJSON", data: `{"customers": [`},
		{name: "WrongShape", data: `{"customers": 42}`},
		{
			name: "DanglingLoan",
			data: `{"customers": [], "loans": [{"loanId": 1, "customerId": 9, "emiFrequency": "WEEKLY"}], "transactions": [], "timestamp": 0}`,
		},
		{
			name: "DanglingTransaction",
			data: `{"customers": [], "loans": [], "transactions": [{"transactionId": "x", "loanId": 5, "amountPaid": 10, "datePaid": 0}], "timestamp": 0}`,
		},
		{
			name: "UnknownFrequency",
			data: `{"customers": [{"id": 1, "name": "A", "frequency": "DAILY"}], "loans": [], "transactions": [], "timestamp": 0}`,
		},
		{
			name: "DuplicateCustomerID",
			data: `{"customers": [{"id": 1, "name": "A", "frequency": "WEEKLY"}, {"id": 1, "name": "B", "frequency": "WEEKLY"}], "loans": [], "transactions": [], "timestamp": 0}`,
		},
		{
			name: "NegativeBalance",
			data: `{"customers": [{"id": 1, "name": "A", "frequency": "WEEKLY"}], "loans": [{"loanId": 1, "customerId": 1, "emiFrequency": "WEEKLY", "currentBalance": -5}], "transactions": [], "timestamp": 0}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := backup.Decode([]byte(tt.data))
			assert.ErrorIs(t, err, backup.ErrMalformedBackup)
		})
	}
}

func TestDecode_LegacyFrequencyCase(t *testing.T) {
	// Early app versions wrote customer frequencies as "Weekly".
	data := `{"customers": [{"id": 1, "name": "A", "frequency": "Weekly"}], "loans": [], "transactions": [], "timestamp": 0}`

	doc, err := backup.Decode([]byte(data))
	require.NoError(t, err)

	customers, _, _, err := doc.Records()
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, customer.FrequencyWeekly, customers[0].Frequency)
}

func TestDecode_AcceptsUnquotedAmounts(t *testing.T) {
	// Backups written by the mobile app carry plain JSON numbers.
	data := `{
		"customers": [{"id": 1, "name": "A", "frequency": "WEEKLY", "createdAt": 1700000000000}],
		"loans": [{"loanId": 2, "customerId": 1, "itemName": "Fan", "totalPrincipal": 1500.5, "downPayment": 0, "currentBalance": 1500.5, "emiFrequency": "WEEKLY", "nextDueDate": 1700600000000, "isClosed": false}],
		"transactions": [],
		"timestamp": 1700000000000
	}`

	doc, err := backup.Decode([]byte(data))
	require.NoError(t, err)

	_, loans, _, err := doc.Records()
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.True(t, loans[0].CurrentBalance.Equal(decimal.NewFromFloat(1500.5)))
}
