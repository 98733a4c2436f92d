package dto

import (
	"bytes"
	"encoding/json"
)

// Importe is a monetary input as typed by the user. Clients send either a
// JSON number or a string such as "$1,250.00"; the raw text is kept and
// normalized by the service layer.
type Importe struct {
	Raw     string
	Present bool
}

func (i *Importe) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*i = Importe{}
		return nil
	}
	i.Present = true
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		i.Raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		// booleans, objects: keep the text so validation names the field
		i.Raw = string(b)
		return nil
	}
	i.Raw = n.String()
	return nil
}

func (i Importe) MarshalJSON() ([]byte, error) {
	if !i.Present {
		return []byte("null"), nil
	}
	return json.Marshal(i.Raw)
}

// ImporteDe builds an Importe from a literal, mostly for tests and seeding.
func ImporteDe(raw string) Importe { return Importe{Raw: raw, Present: true} }
