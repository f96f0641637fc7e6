package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentMethod records how a sale was settled
type PaymentMethod int

const (
	PaymentMethodCredit PaymentMethod = 0
	PaymentMethodCash   PaymentMethod = 1
)

func (p PaymentMethod) String() string {
	names := [...]string{"Credit", "Cash"}
	if int(p) < 0 || int(p) >= len(names) {
		return "Credit"
	}
	return names[p]
}

func (p PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*p = PaymentMethod(i)
		return nil
	}
	switch str {
	case "Credit":
		*p = PaymentMethodCredit
	case "Cash":
		*p = PaymentMethodCash
	}
	return nil
}

func (p PaymentMethod) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentMethodCredit
		return nil
	}
	switch v := value.(type) {
	case int64:
		*p = PaymentMethod(v)
	case int:
		*p = PaymentMethod(v)
	}
	return nil
}
