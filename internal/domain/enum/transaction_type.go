package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TransactionType identifies the kind of ledger posting
type TransactionType string

const (
	TransactionTypeSale            TransactionType = "SALE"
	TransactionTypeDeposit         TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal      TransactionType = "WITHDRAWAL"
	TransactionTypeBuyBack         TransactionType = "BUY_BACK"
	TransactionTypeDiscount        TransactionType = "DISCOUNT"
	TransactionTypeDiscountRemoval TransactionType = "DISCOUNT_REMOVAL"
	TransactionTypeWholesaleSale   TransactionType = "WHOLESALE_SALE"
)

func (t TransactionType) String() string {
	return string(t)
}

// Valid reports whether t is one of the known posting types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeSale, TransactionTypeDeposit, TransactionTypeWithdrawal,
		TransactionTypeBuyBack, TransactionTypeDiscount, TransactionTypeDiscountRemoval,
		TransactionTypeWholesaleSale:
		return true
	}
	return false
}

// HasReceipt reports whether postings of this type can be printed.
func (t TransactionType) HasReceipt() bool {
	switch t {
	case TransactionTypeSale, TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeBuyBack,
		TransactionTypeWholesaleSale:
		return true
	}
	return false
}

func (t TransactionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*t = TransactionType(str)
	return nil
}

func (t TransactionType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *TransactionType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = TransactionType(v)
	case []byte:
		*t = TransactionType(string(v))
	}
	return nil
}
