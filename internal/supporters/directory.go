package supporters

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/tamogatas-dev/tamogatas/internal/model"
)

// Lister returns the full supporter list from the store.
type Lister interface {
	ListSupporters(ctx context.Context) ([]model.Supporter, error)
}

// Directory provides in-memory lookup over supporters.
type Directory struct {
	supporters []model.Supporter
	byID       map[int64]model.Supporter
}

// NewDirectory creates a Directory from a slice of supporters.
func NewDirectory(supporters []model.Supporter) *Directory {
	d := &Directory{byID: make(map[int64]model.Supporter, len(supporters))}
	for _, s := range supporters {
		d.Add(s)
	}
	return d
}

// Load fetches all supporters and returns a Directory.
func Load(ctx context.Context, l Lister) (*Directory, error) {
	list, err := l.ListSupporters(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing supporters: %w", err)
	}
	return NewDirectory(list), nil
}

// All returns all supporters in insertion order.
func (d *Directory) All() []model.Supporter {
	return d.supporters
}

// Len returns the number of supporters.
func (d *Directory) Len() int {
	return len(d.supporters)
}

// Get returns a supporter by ID.
func (d *Directory) Get(id int64) (model.Supporter, bool) {
	s, ok := d.byID[id]
	return s, ok
}

// Exists reports whether a supporter ID exists.
func (d *Directory) Exists(id int64) bool {
	_, ok := d.byID[id]
	return ok
}

// Add inserts s, replacing an existing supporter with the same ID.
func (d *Directory) Add(s model.Supporter) {
	if _, ok := d.byID[s.ID]; ok {
		for i := range d.supporters {
			if d.supporters[i].ID == s.ID {
				d.supporters[i] = s
				break
			}
		}
	} else {
		d.supporters = append(d.supporters, s)
	}
	d.byID[s.ID] = s
}

// Suggest returns the only supporter whose name or nickname matches hint,
// ignoring case and repeated whitespace. Ambiguous or empty hints match nothing.
func (d *Directory) Suggest(hint string) (model.Supporter, bool) {
	key := normalizeName(hint)
	if key == "" {
		return model.Supporter{}, false
	}

	var found model.Supporter
	matches := 0
	for _, s := range d.supporters {
		if normalizeName(s.Name) == key || (s.Nickname != "" && normalizeName(s.Nickname) == key) {
			found = s
			matches++
		}
	}
	if matches != 1 {
		return model.Supporter{}, false
	}
	return found, true
}

func normalizeName(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
