package siteheader

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// DefaultTagName is the tag host pages use for the header.
const DefaultTagName = "website-header"

var (
	// ErrInvalidTagName is returned when registering a tag whose name
	// isn't a valid custom element name: it must start with a lowercase
	// ASCII letter, contain a hyphen, and only use lowercase ASCII
	// letters, digits, '-', '.', and '_'.
	ErrInvalidTagName = errors.New("invalid custom tag name")

	// ErrTagRegistered is returned when registering a tag name that is
	// already bound to a different definition.
	ErrTagRegistered = errors.New("tag already registered with a different definition")

	// ErrTagNotRegistered is returned when a tag is activated that has no
	// definition bound to it.
	ErrTagNotRegistered = errors.New("tag not registered")

	// ErrTagInParagraph is returned when a registered tag is activated
	// inside a <p>, where the header's block content isn't allowed.
	ErrTagInParagraph = errors.New("tag can't be activated inside a paragraph")
)

// Registry binds custom tag names to the Pages rendered in their place. Its
// zero value is not usable; create one with NewRegistry. It can safely be
// used by multiple goroutines.
type Registry struct {
	mu   sync.RWMutex
	tags map[string]Page
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tags: map[string]Page{}}
}

// Register binds name to page. Registering a page with the same Key as the
// one already bound to name does nothing, so setup code can safely run more
// than once; binding a page with a different Key returns ErrTagRegistered and
// leaves the existing binding in place.
func (r *Registry) Register(ctx context.Context, name string, page Page) error {
	if !validTagName(name) {
		return fmt.Errorf("error registering %q: %w", name, ErrInvalidTagName)
	}
	key := page.Key(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.tags[name]; ok {
		if existingKey := existing.Key(ctx); existingKey != key {
			return fmt.Errorf("error registering %q as %s, already registered as %s: %w", name, key, existingKey, ErrTagRegistered)
		}
		logger(ctx).DebugContext(ctx, "tag already registered", "tag", name, "key", key)
		return nil
	}
	r.tags[name] = page
	logger(ctx).DebugContext(ctx, "registered tag", "tag", name, "key", key)
	return nil
}

// Lookup returns the Page bound to name, if there is one.
func (r *Registry) Lookup(name string) (Page, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	page, ok := r.tags[name]
	return page, ok
}

// Tags returns the registered tag names, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.tags))
}

func validTagName(name string) bool {
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		return false
	}
	var hyphen bool
	for _, c := range []byte(name) {
		switch {
		case c == '-':
			hyphen = true
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '.', c == '_':
		default:
			return false
		}
	}
	return hyphen
}
