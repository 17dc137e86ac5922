package user

import (
	"encoding/json"
	"fmt"
)

// Text accepts a JSON string, number or boolean and keeps its literal text.
// Clients send RUC, DNI, phone and business type either quoted or bare.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*t = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[':
		return fmt.Errorf("expected a string or number, got %s", b)
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string { return string(t) }
