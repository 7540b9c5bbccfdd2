package enums

import "fmt"

// TransactionType labels a ledger entry. The numeric effect is driven by the
// amount and quantity change, not by this label.
type TransactionType string

const (
	TransactionTypeInitial     TransactionType = "INITIAL"
	TransactionTypeDeposit     TransactionType = "DEPOSIT"
	TransactionTypeWithdraw    TransactionType = "WITHDRAW"
	TransactionTypeBuy         TransactionType = "BUY"
	TransactionTypeSell        TransactionType = "SELL"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
	TransactionTypeAdjustment  TransactionType = "ADJUSTMENT"
	TransactionTypeInterest    TransactionType = "INTEREST"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeInitial,
	TransactionTypeDeposit,
	TransactionTypeWithdraw,
	TransactionTypeBuy,
	TransactionTypeSell,
	TransactionTypeTransferOut,
	TransactionTypeTransferIn,
	TransactionTypeAdjustment,
	TransactionTypeInterest,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical transaction types.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts raw input into TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
