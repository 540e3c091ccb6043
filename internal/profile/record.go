package profile

import (
	"fmt"
	"time"

	"github.com/brizzai/auth-profile/internal/store"
)

// UsersCollection holds one profile record per registered identity.
const UsersCollection = "users"

// Stored field names.
const (
	FieldIdentityID = "identityId"
	FieldName       = "name"
	FieldEmail      = "email"
	FieldAge        = "age"
	FieldPhone      = "phone"
	FieldCreatedAt  = "createdAt"
)

var knownFields = map[string]bool{
	FieldIdentityID: true,
	FieldName:       true,
	FieldEmail:      true,
	FieldAge:        true,
	FieldPhone:      true,
	FieldCreatedAt:  true,
}

// Record is the denormalized profile written at registration. Age and Phone are
// kept as entered.
type Record struct {
	DocumentID string       `yaml:"documentId,omitempty"`
	IdentityID string       `yaml:"identityId"`
	Name       string       `yaml:"name"`
	Email      string       `yaml:"email"`
	Age        string       `yaml:"age"`
	Phone      string       `yaml:"phone"`
	CreatedAt  time.Time    `yaml:"createdAt"`
	Extra      store.Fields `yaml:"extra,omitempty"`
}

// CheckExtra rejects extra fields that reuse a profile field name or hold
// values no store can keep.
func CheckExtra(extra map[string]any) error {
	for k := range extra {
		if knownFields[k] {
			return fmt.Errorf("%w: %q", ErrReservedField, k)
		}
	}
	_, err := store.Normalize(extra)
	return err
}

// Fields flattens the record into a document body. Callers run CheckExtra
// first; a colliding extra key would be overwritten here.
func (r Record) Fields() store.Fields {
	f := make(store.Fields, len(r.Extra)+len(knownFields))
	for k, v := range r.Extra {
		f[k] = v
	}
	f[FieldIdentityID] = r.IdentityID
	f[FieldName] = r.Name
	f[FieldEmail] = r.Email
	f[FieldAge] = r.Age
	f[FieldPhone] = r.Phone
	f[FieldCreatedAt] = r.CreatedAt
	return f
}

// RecordFromDocument is the inverse of Fields. Unknown fields land in Extra.
func RecordFromDocument(d store.Document) Record {
	r := Record{
		DocumentID: d.ID,
		IdentityID: d.Fields.String(FieldIdentityID),
		Name:       d.Fields.String(FieldName),
		Email:      d.Fields.String(FieldEmail),
		Age:        d.Fields.String(FieldAge),
		Phone:      d.Fields.String(FieldPhone),
		CreatedAt:  d.Fields.Time(FieldCreatedAt),
	}
	for k, v := range d.Fields {
		if knownFields[k] {
			continue
		}
		if r.Extra == nil {
			r.Extra = store.Fields{}
		}
		r.Extra[k] = v
	}
	return r
}
