package testutil

import (
	"encoding/json"

	"targetkit/internal/ledger/models"
)

// TestOwners provides fixed credential pairs for ledger tests.
var TestOwners = struct {
	Acme  models.Owner
	Other models.Owner
}{
	Acme:  models.Owner{Tenant: "acme", ClientID: "client-1"},
	Other: models.Owner{Tenant: "acme", ClientID: "client-2"},
}

// EntryBuilder provides a fluent interface for building ledger entries.
type EntryBuilder struct {
	entry models.Entry
}

// NewEntryBuilder creates an entry owned by TestOwners.Acme.
func NewEntryBuilder(activityID string) *EntryBuilder {
	return &EntryBuilder{entry: models.Entry{
		ID:       activityID,
		Tenant:   TestOwners.Acme.Tenant,
		ClientID: TestOwners.Acme.ClientID,
	}}
}

func (b *EntryBuilder) OwnedBy(o models.Owner) *EntryBuilder {
	b.entry.Tenant = o.Tenant
	b.entry.ClientID = o.ClientID
	return b
}

func (b *EntryBuilder) Build() models.Entry {
	return b.entry
}

// MustJSON marshals v or panics. For building upstream response bodies.
func MustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
