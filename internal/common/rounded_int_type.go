package common

import (
	"bytes"
	"encoding/json"
	"math"
)

// RoundedInt accepts integer or fractional JSON numbers and rounds to the
// nearest integer. null leaves the value untouched.
type RoundedInt int

func (ri *RoundedInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*ri = RoundedInt(math.Round(f))
	return nil
}
