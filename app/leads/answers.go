package leads

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// AnswerSeparator joins answers in the answers column. An answer that itself
// contains the separator does not round-trip.
const AnswerSeparator = "|||"

// Answers is the ordered list of questionnaire answers stored as one TEXT column.
type Answers []string

// Value implements driver.Valuer.
func (a Answers) Value() (driver.Value, error) {
	return strings.Join(a, AnswerSeparator), nil
}

// Scan implements sql.Scanner.
func (a *Answers) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*a = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("leads: cannot scan %T into Answers", value)
	}
	*a = strings.Split(raw, AnswerSeparator)
	return nil
}
