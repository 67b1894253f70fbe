package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JSONInt is an integer body field that also accepts a quoted number and
// the empty string.  "" decodes as Blank so validation can report the field
// as required instead of failing the whole body.
type JSONInt struct {
	Int   int
	Blank bool
}

func (n *JSONInt) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = JSONInt{Blank: true}
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not an integer: %q", s)
		}
		*n = JSONInt{Int: v}
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = JSONInt{Int: v}
	return nil
}

// IntOf wraps v for use in inputs built in code.
func IntOf(v int) *JSONInt { return &JSONInt{Int: v} }
