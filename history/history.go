// Package history is the local watch backend: it stores the last reported location of every item
// and seeds new playlists with it.
package history

import (
	"sync"

	"github.com/metafates/gache"
	"github.com/playmark/playmark/filesystem"
	"github.com/playmark/playmark/playback"
	"github.com/playmark/playmark/where"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"
)

type store interface {
	Get() (map[string]*Record, bool, error)
	Set(map[string]*Record) error
}

// cacher is created on first use so the path resolves against the filesystem backend in effect then.
var cacher = sync.OnceValue(func() store {
	return gache.New[map[string]*Record](&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	})
})

// mu serializes read-modify-write cycles on the history file.
var mu sync.Mutex

// Get returns every record keyed by item ID.
func Get() (map[string]*Record, error) {
	mu.Lock()
	defer mu.Unlock()
	return load()
}

func load() (map[string]*Record, error) {
	cached, expired, err := cacher().Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Record), nil
	}
	return cached, nil
}

// update applies fn to the stored records and writes them back.
func update(fn func(records map[string]*Record)) error {
	mu.Lock()
	defer mu.Unlock()

	records, err := load()
	if err != nil {
		return err
	}
	fn(records)
	return cacher().Set(records)
}

// List returns every record, most recently updated first.
func List() ([]*Record, error) {
	records, err := Get()
	if err != nil {
		return nil, err
	}

	list := make([]*Record, 0, len(records))
	for _, r := range records {
		list = append(list, r)
	}
	slices.SortFunc(list, func(a, b *Record) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return list, nil
}

// Lookup returns the record for itemID.
func Lookup(itemID string) (mo.Option[*Record], error) {
	records, err := Get()
	if err != nil {
		return mo.None[*Record](), err
	}
	if r, ok := records[itemID]; ok {
		return mo.Some(r), nil
	}
	return mo.None[*Record](), nil
}

// Remove deletes the record for itemID.
func Remove(itemID string) error {
	return update(func(records map[string]*Record) {
		delete(records, itemID)
	})
}

// Clear deletes every record.
func Clear() error {
	return update(func(records map[string]*Record) {
		clear(records)
	})
}

// Seed fills in the saved location and content length of items that have a record.
// Values already present on an item are kept.
func Seed(items []*playback.Item) error {
	records, err := Get()
	if err != nil {
		return err
	}

	for _, item := range items {
		r, ok := records[item.ID]
		if !ok {
			continue
		}
		if item.LastKnownLocation.IsAbsent() {
			item.LastKnownLocation = mo.Some(r.Location)
		}
		if item.ContentLength.IsAbsent() {
			item.ContentLength = r.ContentLength
		}
		if item.Title == "" {
			item.Title = r.Title
		}
	}
	return nil
}
