package model

import (
	"encoding/json"
	"fmt"
)

// OptionalID is a nullable foreign key that also records whether the
// field was present in the decoded JSON at all. An absent field leaves
// Set false; an explicit null sets Set with a nil ID.
type OptionalID struct {
	Set bool
	ID  *int64
}

// SomeID returns an OptionalID that is set to id, or to null when id is nil.
func SomeID(id *int64) OptionalID {
	return OptionalID{Set: true, ID: id}
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.ID = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("category id: %w", err)
	}
	o.ID = &v
	return nil
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if o.ID == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.ID)
}

// SameCategory reports whether two nullable category ids refer to the same
// bucket, treating two nils as the Uncategorized bucket.
func SameCategory(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
