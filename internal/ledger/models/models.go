package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Entry records that this app, authenticated as ClientID against Tenant,
// created the upstream activity ID. Entries are appended or removed whole,
// never mutated.
type Entry struct {
	ID       string `json:"id"`
	Tenant   string `json:"tenant"`
	ClientID string `json:"clientId"`
}

// Owner identifies the credential pair entries are scoped to.
type Owner struct {
	Tenant   string
	ClientID string
}

func (o Owner) Valid() bool {
	return o.Tenant != "" && o.ClientID != ""
}

// OwnedBy reports whether the entry belongs to owner.
func (e Entry) OwnedBy(o Owner) bool {
	return e.Tenant == o.Tenant && e.ClientID == o.ClientID
}

// Matches reports an exact (tenant, clientId, id) match.
func (e Entry) Matches(o Owner, id string) bool {
	return e.OwnedBy(o) && e.ID == id
}

// UnmarshalJSON accepts numeric ids written by older versions and
// normalizes them to strings.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		Tenant   string          `json:"tenant"`
		ClientID string          `json:"clientId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := normalizeID(raw.ID)
	if err != nil {
		return err
	}
	e.ID = id
	e.Tenant = raw.Tenant
	e.ClientID = raw.ClientID
	return nil
}

func normalizeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		return n.String(), nil
	}
	return "", fmt.Errorf("entry id must be a string or number, got %s", raw)
}

// Document is the persisted shape of the whole ledger.
type Document struct {
	Entries []Entry `json:"entries"`
}

// IDSet is a set of activity ids.
type IDSet map[string]struct{}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Slice returns the ids in no particular order.
func (s IDSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}
