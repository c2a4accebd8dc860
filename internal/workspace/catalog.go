// Package workspace holds the ordered, immutable list of upstream workspaces.
// The first entry is the default workspace.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Workspace is a named upstream partition.
type Workspace struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

// Catalog is the declared workspace list. It is never mutated after construction.
type Catalog struct {
	items []Workspace
	byID  map[string]int
}

var ErrEmptyCatalog = errors.New("workspace catalog must contain at least one workspace")

// Builtin is the workspace list used when no file is configured.
var Builtin = []Workspace{
	{Name: "Default", ID: "222991964"},
	{Name: "/SEBN", ID: "223101869"},
	{Name: "/SEF", ID: "259214924"},
	{Name: "/SEG", ID: "223101884"},
	{Name: "/SEIB-ES", ID: "808870526"},
	{Name: "/SEIB-PT", ID: "812325246"},
	{Name: "/SEUK", ID: "223093514"},
}

// New validates and copies items. Ids must be non-empty and unique.
func New(items []Workspace) (*Catalog, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		items: make([]Workspace, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for i, w := range items {
		id := strings.TrimSpace(w.ID)
		if id == "" {
			return nil, fmt.Errorf("workspace %d: id is required", i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("workspace %d: duplicate id %s", i, id)
		}
		name := strings.TrimSpace(w.Name)
		if name == "" {
			name = id
		}
		c.byID[id] = len(c.items)
		c.items = append(c.items, Workspace{Name: name, ID: id})
	}
	return c, nil
}

// MustNew is New for static lists known to be valid.
func MustNew(items []Workspace) *Catalog {
	c, err := New(items)
	if err != nil {
		panic(err)
	}
	return c
}

type fileFormat struct {
	Workspaces []Workspace `yaml:"workspaces"`
}

// LoadFile reads a YAML document of the form:
//
//	workspaces:
//	  - name: Default
//	    id: "222991964"
//
// An empty path returns the builtin catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return New(Builtin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspaces file: %w", err)
	}
	var doc fileFormat
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse workspaces file: %w", err)
	}
	return New(doc.Workspaces)
}

// All returns the workspaces in declared order. The slice is a copy.
func (c *Catalog) All() []Workspace {
	out := make([]Workspace, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Default() Workspace {
	return c.items[0]
}

func (c *Catalog) IsDefault(id string) bool {
	return id == c.items[0].ID
}

// Lookup finds a workspace by id.
func (c *Catalog) Lookup(id string) (Workspace, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Workspace{}, false
	}
	return c.items[i], true
}

// NameOf returns the workspace name, or the id itself when unknown.
func (c *Catalog) NameOf(id string) string {
	if w, ok := c.Lookup(id); ok {
		return w.Name
	}
	return id
}

// OrDefault returns id, or the default workspace id when id is blank.
func (c *Catalog) OrDefault(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return c.items[0].ID
}
