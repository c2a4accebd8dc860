package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ListRule pulls a list out of a decoded JSON document. It reports false when
// the document does not have the shape the rule expects.
type ListRule func(doc any) ([]any, bool)

// BareArray matches a document that is itself a JSON array.
func BareArray() ListRule {
	return func(doc any) ([]any, bool) {
		list, ok := doc.([]any)
		return list, ok
	}
}

// Key matches an object whose named member is an array. An empty array still
// matches, so later rules are not consulted.
func Key(name string) ListRule {
	return func(doc any) ([]any, bool) {
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil, false
		}
		list, ok := obj[name].([]any)
		return list, ok
	}
}

// Rule sets for the upstream list endpoints, in the order candidates are tried.
var (
	OfferListRules    = []ListRule{BareArray(), Key("content"), Key("offers")}
	ActivityListRules = []ListRule{BareArray(), Key("activities"), Key("content"), Key("items")}
	PropertyListRules = []ListRule{BareArray(), Key("properties"), Key("items"), Key("content")}
)

// Item is one element of an upstream list. Numbers are kept as json.Number so
// ids round-trip unchanged.
type Item map[string]any

// ExtractList decodes body and returns the items of the first matching rule.
// A document no rule matches yields an empty list; a body that is not JSON is
// an error. Non-object elements are dropped.
func ExtractList(body []byte, rules ...ListRule) ([]Item, error) {
	doc, err := decode(body)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		list, ok := rule(doc)
		if !ok {
			continue
		}
		items := make([]Item, 0, len(list))
		for _, el := range list {
			if obj, ok := el.(map[string]any); ok {
				items = append(items, Item(obj))
			}
		}
		return items, nil
	}
	return []Item{}, nil
}

func decode(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode upstream body: %w", err)
	}
	return doc, nil
}

// decodeObject decodes a JSON object body, keeping numbers as json.Number.
func decodeObject(body []byte) (Item, error) {
	doc, err := decode(body)
	if err != nil {
		return nil, err
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode upstream body: expected object, got %T", doc)
	}
	return Item(obj), nil
}

// IDString renders an id field (string or number) as a string; "" when absent.
func IDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

// ID returns the item's "id", falling back to the given alternate keys.
func (it Item) ID(alternates ...string) string {
	if id := IDString(it["id"]); id != "" {
		return id
	}
	for _, k := range alternates {
		if id := IDString(it[k]); id != "" {
			return id
		}
	}
	return ""
}

// With returns a shallow copy of the item with the given fields set.
func (it Item) With(fields map[string]any) Item {
	out := make(Item, len(it)+len(fields))
	for k, v := range it {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// TagWorkspace returns copies of items carrying workspaceId and workspaceName.
func TagWorkspace(items []Item, workspaceID, workspaceName string) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.With(map[string]any{"workspaceId": workspaceID, "workspaceName": workspaceName})
	}
	return out
}
