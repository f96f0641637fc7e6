package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BatchStatus is the lifecycle state of a customer batch. Completed is
// terminal.
type BatchStatus int

const (
	BatchStatusActive    BatchStatus = 0
	BatchStatusCompleted BatchStatus = 1
)

func (s BatchStatus) String() string {
	names := [...]string{"Active", "Completed"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Unknown"
	}
	return names[s]
}

func (s BatchStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BatchStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = BatchStatus(i)
		return nil
	}
	switch str {
	case "Active":
		*s = BatchStatusActive
	case "Completed":
		*s = BatchStatusCompleted
	default:
		return fmt.Errorf("unknown batch status %q", str)
	}
	return nil
}

func (s BatchStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *BatchStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BatchStatusActive
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = BatchStatus(v)
	case int:
		*s = BatchStatus(v)
	}
	return nil
}
