package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Text is a free-text field that also accepts JSON numbers and booleans,
// which form inputs for scores and hours often produce.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
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
		return fmt.Errorf("expected text, got %s", b[:1])
	default:
		*t = Text(b)
	}
	return nil
}
