package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// Amount stores a uint64 as decimal text; SQLite integers are signed and
// database/sql rejects uint64 values with the high bit set.
type Amount uint64

func (Amount) GormDataType() string {
	return "text"
}

func (a Amount) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(a), 10), nil
}

func (a *Amount) Scan(value any) error {
	var text string
	switch v := value.(type) {
	case nil:
		*a = 0
		return nil
	case string:
		text = v
	case []byte:
		text = string(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("scan amount: negative value %d", v)
		}
		*a = Amount(v)
		return nil
	default:
		return fmt.Errorf("scan amount: unsupported type %T", value)
	}

	parsed, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return fmt.Errorf("scan amount: %w", err)
	}
	*a = Amount(parsed)
	return nil
}
