// Package lore loads tagged reference data (item definitions, dialogue,
// recipes, whatever a game or simulation wants to data-drive) from a
// directory of YAML files into a queryable, type-checked Lorebook
// resource, with tag-based lookup and an optional per-entry field merge
// against another tagged entry.
package lore

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrEntryNotFound      = fmt.Errorf("lore: entry not found")
	ErrTypeNotRegistered  = fmt.Errorf("lore: type not registered")
	ErrEntryAlreadyExists = fmt.Errorf("lore: entry already exists")
	ErrInvalidLoreEntry   = fmt.Errorf("lore: invalid entry")
	ErrLoreMissingTag     = fmt.Errorf("lore: entry missing required tag fields")
)

// Tags is an unordered set of tag strings identifying a lore entry. Two
// Tags with the same members hash identically regardless of insertion
// order, so Tags is also how entries are addressed once loaded.
type Tags struct {
	set map[string]struct{}
}

// NewTags builds a Tags set from the given tag strings.
func NewTags(tags ...string) Tags {
	t := Tags{set: make(map[string]struct{}, len(tags))}
	for _, s := range tags {
		t.set[s] = struct{}{}
	}
	return t
}

// With returns a copy of t with s added.
func (t Tags) With(s string) Tags {
	out := NewTags(t.Sorted()...)
	out.set[s] = struct{}{}
	return out
}

// Has reports whether s is a member of t.
func (t Tags) Has(s string) bool {
	_, ok := t.set[s]
	return ok
}

// Sorted returns t's members in a stable, deterministic order.
func (t Tags) Sorted() []string {
	out := make([]string, 0, len(t.set))
	for s := range t.set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Hash returns a stable identifier for this exact set of tags, used as the
// entry key in a Lorebook.
func (t Tags) Hash() uint64 {
	return xxhash.Sum64String(strings.Join(t.Sorted(), "\x00"))
}

// Lorebook is the built, read-only collection of lore entries, indexed by
// tag-set hash and by individual tag for intersection queries.
type Lorebook struct {
	entries map[uint64]any
	tables  map[string]map[uint64]struct{}
}

type loreEntryDecoder func(raw map[string]any) (any, error)

// LorebookBuilder accumulates registered lore types and loaded directories
// before producing an immutable Lorebook.
type LorebookBuilder struct {
	book  Lorebook
	types map[uint64]loreEntryDecoder
}

// NewLorebookBuilder starts an empty builder.
func NewLorebookBuilder() *LorebookBuilder {
	return &LorebookBuilder{
		book: Lorebook{
			entries: make(map[uint64]any),
			tables:  make(map[string]map[uint64]struct{}),
		},
		types: make(map[uint64]loreEntryDecoder),
	}
}

func typeKey(t reflect.Type) uint64 {
	return xxhash.Sum64String(t.String())
}

// Register teaches the builder how to decode entries of type T ("tp" in
// the YAML file must equal T's type name). Round-trips the raw YAML map
// through yaml.Marshal/Unmarshal to materialize T, mirroring how the
// value was loaded generically off disk.
func Register[T any](b *LorebookBuilder) *LorebookBuilder {
	var zero T
	name := reflect.TypeOf(zero).String()
	b.types[xxhash.Sum64String(name)] = func(raw map[string]any) (any, error) {
		bytes, err := yaml.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLoreEntry, err)
		}
		var out T
		if err := yaml.Unmarshal(bytes, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLoreEntry, err)
		}
		return out, nil
	}
	return b
}

type basicLoreEntry struct {
	Tags  []string `yaml:"tags"`
	Type  string   `yaml:"tp"`
	Merge []string `yaml:"merge,omitempty"`
}

func (b *LorebookBuilder) insert(value any, tags Tags) error {
	hash := tags.Hash()
	if _, exists := b.book.entries[hash]; exists {
		return fmt.Errorf("%w: tags %v", ErrEntryAlreadyExists, tags.Sorted())
	}
	for _, tag := range tags.Sorted() {
		if b.book.tables[tag] == nil {
			b.book.tables[tag] = make(map[uint64]struct{})
		}
		b.book.tables[tag][hash] = struct{}{}
	}
	b.book.entries[hash] = value
	return nil
}

// Build reads every *.yaml/*.yml file directly under dir, decodes each
// against its registered type, merging a file's fields onto another
// file's (named by matching "merge" tags) before decoding when present,
// and returns the finished Lorebook.
func (b *LorebookBuilder) Build(dir string) (Lorebook, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return Lorebook{}, fmt.Errorf("lore: reading %s: %w", dir, err)
	}

	raw := make(map[uint64]map[string]any)
	info := make(map[uint64]basicLoreEntry)

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(dir, f.Name()))
		if err != nil {
			return Lorebook{}, fmt.Errorf("lore: reading %s: %w", f.Name(), err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(contents, &doc); err != nil {
			return Lorebook{}, fmt.Errorf("lore: parsing %s: %w", f.Name(), err)
		}
		var basic basicLoreEntry
		if err := yaml.Unmarshal(contents, &basic); err != nil {
			return Lorebook{}, fmt.Errorf("%w: %s: %v", ErrLoreMissingTag, f.Name(), err)
		}
		hash := NewTags(basic.Tags...).Hash()
		raw[hash] = doc
		info[hash] = basic
	}

	for hash, basic := range info {
		tags := NewTags(basic.Tags...)
		doc := raw[hash]

		if len(basic.Merge) > 0 {
			mergeHash := NewTags(basic.Merge...).Hash()
			if base, ok := raw[mergeHash]; ok {
				doc = mergeMaps(cloneMap(base), doc)
			}
		}

		decode, ok := b.types[xxhash.Sum64String(basic.Type)]
		if !ok {
			return Lorebook{}, fmt.Errorf("%w: %s", ErrTypeNotRegistered, basic.Type)
		}
		value, err := decode(doc)
		if err != nil {
			return Lorebook{}, err
		}
		if err := b.insert(value, tags); err != nil {
			return Lorebook{}, err
		}
	}

	return b.book, nil
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// mergeMaps recursively overlays override onto base, returning base.
// Matches the deep-merge semantics used to let one lore entry inherit and
// extend another's fields.
func mergeMaps(base, override map[string]any) map[string]any {
	for k, v := range override {
		if childOverride, ok := v.(map[string]any); ok {
			if childBase, ok := base[k].(map[string]any); ok {
				base[k] = mergeMaps(cloneMap(childBase), childOverride)
				continue
			}
		}
		base[k] = v
	}
	return base
}

// Get looks up the single entry exactly matching tags.
func Get[T any](book Lorebook, tags Tags) (T, error) {
	var zero T
	v, ok := book.entries[tags.Hash()]
	if !ok {
		return zero, fmt.Errorf("%w: tags %v", ErrEntryNotFound, tags.Sorted())
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: tags %v", ErrInvalidLoreEntry, tags.Sorted())
	}
	return typed, nil
}

// GetAllWithTags returns every entry whose tag set is a superset of tags,
// downcast to T (entries of a different type are silently skipped).
func GetAllWithTags[T any](book Lorebook, tags Tags) []T {
	var hashes map[uint64]struct{}
	for _, tag := range tags.Sorted() {
		table := book.tables[tag]
		if hashes == nil {
			hashes = make(map[uint64]struct{}, len(table))
			for h := range table {
				hashes[h] = struct{}{}
			}
			continue
		}
		for h := range hashes {
			if _, ok := table[h]; !ok {
				delete(hashes, h)
			}
		}
	}

	out := make([]T, 0, len(hashes))
	for h := range hashes {
		if v, ok := book.entries[h].(T); ok {
			out = append(out, v)
		}
	}
	return out
}
