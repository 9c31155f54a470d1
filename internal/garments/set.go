package garments

import (
	"net/url"
	"strings"
	"sync"

	"wardrobe/internal/imageref"
)

// MaxItems is the largest garment set a single try-on accepts.
const MaxItems = 4

// Deep-link parameters, in priority order.
const (
	ParamOutfit  = "outfit"
	ParamOutfits = "outfits"
	ParamItems   = "items"
)

// Set is the ordered, deduplicated, capped collection of garment references
// chosen for a try-on. The zero value is an empty set ready for use.
type Set struct {
	mu     sync.Mutex
	items  []string
	seeded bool
}

// New returns an empty set.
func New() *Set {
	return &Set{}
}

// SeedFromDeepLink fills the set from the first present deep-link parameter.
// It runs at most once per set and reports whether it ran.
func (s *Set) SeedFromDeepLink(params url.Values) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return false
	}
	s.seeded = true

	var refs []string
	switch {
	case params.Get(ParamOutfit) != "":
		refs = []string{strings.TrimSpace(params.Get(ParamOutfit))}
	case params.Get(ParamOutfits) != "":
		refs = splitList(params.Get(ParamOutfits))
	case params.Get(ParamItems) != "":
		refs = splitList(params.Get(ParamItems))
	}
	if seeded := unique(refs); len(seeded) > 0 {
		s.items = seeded
	}
	return true
}

// Add appends refs up to the remaining capacity and returns how many new
// references ended up in the set.
func (s *Set) Add(refs ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := MaxItems - len(s.items)
	if remaining <= 0 || len(refs) == 0 {
		return 0
	}
	if len(refs) > remaining {
		refs = refs[:remaining]
	}
	before := len(s.items)
	merged := make([]string, 0, before+len(refs))
	merged = append(merged, s.items...)
	merged = append(merged, refs...)
	s.items = unique(merged)
	return len(s.items) - before
}

// AddRefs is Add for typed references.
func (s *Set) AddRefs(refs ...imageref.Ref) int {
	raw := make([]string, 0, len(refs))
	for _, ref := range refs {
		if !ref.IsZero() {
			raw = append(raw, ref.String())
		}
	}
	return s.Add(raw...)
}

// AddWardrobeItems adds the main images of the given wardrobe items.
func (s *Set) AddWardrobeItems(ids ...int64) int {
	refs := make([]imageref.Ref, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, imageref.ClothesImage(id))
	}
	return s.AddRefs(refs...)
}

// RemoveAt drops the element at index; out-of-range indexes are ignored.
func (s *Set) RemoveAt(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return
	}
	s.items = append(s.items[:index:index], s.items[index+1:]...)
}

// Items returns a copy of the set in display order.
func (s *Set) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.items...)
}

// Len returns the number of garments in the set.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// unique keeps the first occurrence of each non-empty reference, capped at MaxItems.
func unique(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
		if len(out) == MaxItems {
			break
		}
	}
	return out
}
