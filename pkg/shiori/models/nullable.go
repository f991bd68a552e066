package models

import "encoding/json"

// NullableString distinguishes an absent JSON field from an explicit
// null in partial-update bodies: absent leaves the stored value
// untouched, null clears it.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}
