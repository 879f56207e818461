package siteheader

import (
	"context"
	"html/template"
	"io/fs"
	"sync"
)

// Site is an interface for the singleton that will be used to render HTML.
// Consumers should use it to store any clients or cross-request state they
// need, and use it to render Pages.
//
// A Site needs to be able to surface the templates it relies on as an fs.FS.
type Site interface {
	// TemplateDir returns an fs.FS containing all the templates needed to
	// render every Page on the Site.
	//
	// The path to templates within the fs.FS should match the output of
	// Templates for Components.
	TemplateDir(ctx context.Context) fs.FS
}

// TemplateCacher is an optional interface for Sites. Those fulfilling it can
// cache their template parsing using the output of Key from each Page to save
// on the overhead of parsing the template each time.
type TemplateCacher interface {
	// GetCachedTemplate returns the *template.Template specified by the
	// passed key. It should return nil if the template hasn't been cached
	// yet.
	GetCachedTemplate(ctx context.Context, key string) *template.Template

	// SetCachedTemplate stores the passed *template.Template under the
	// passed key, for later retrieval with GetCachedTemplate.
	//
	// Any errors encountered should be logged, but as this is a
	// best-effort operation, will not be surfaced outside the function.
	SetCachedTemplate(ctx context.Context, key string, tmpl *template.Template)
}

// MarkupCacher is an optional interface for Sites. Those fulfilling it can
// cache the rendered output of a Page under its Key. Unlike TemplateCacher,
// this caches the executed HTML, so it is only consulted for output that is a
// pure function of the Page's Key, like the markup RenderFragment produces for
// a Header.
type MarkupCacher interface {
	// GetCachedMarkup returns the markup stored under key, or nil if
	// nothing has been stored yet.
	GetCachedMarkup(ctx context.Context, key string) *string

	// SetCachedMarkup stores markup under key, for later retrieval with
	// GetCachedMarkup.
	SetCachedMarkup(ctx context.Context, key, markup string)
}

// ServerErrorPager defines an interface that Sites can optionally implement.
// If a Site implements ServerErrorPager and Render encounters an error,
// the output of ServerErrorPage will be rendered.
type ServerErrorPager interface {
	ServerErrorPage(ctx context.Context) Page
}

var _ Site = &CachedSite{}
var _ TemplateCacher = &CachedSite{}
var _ MarkupCacher = &CachedSite{}

// CachedSite is an implementation of the Site interface that can be embedded
// in other Site implementations. It caches parsed templates and rendered
// markup in memory and exposes the template fs.FS passed to it in
// NewCachedSite. A CachedSite must be instantiated through NewCachedSite, its
// empty value is not usable.
type CachedSite struct {
	templateCache   map[string]*template.Template
	templateCacheMu sync.RWMutex

	markupCache   map[string]string
	markupCacheMu sync.RWMutex

	// templateDir is where Execute will look for the templates required
	// by Components.
	templateDir fs.FS
}

// NewCachedSite returns a CachedSite instance that is ready to be used.
func NewCachedSite(templates fs.FS) *CachedSite {
	return &CachedSite{
		templateCache: map[string]*template.Template{},
		markupCache:   map[string]string{},
		templateDir:   templates,
	}
}

// NewHeaderSite returns a CachedSite serving the header templates embedded in
// this package.
func NewHeaderSite() *CachedSite {
	return NewCachedSite(Templates())
}

// GetCachedTemplate returns the cached template associated with the passed
// key, if one exists. If no template is cached for that key, it returns nil.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) GetCachedTemplate(_ context.Context, key string) *template.Template {
	s.templateCacheMu.RLock()
	defer s.templateCacheMu.RUnlock()
	return s.templateCache[key]
}

// SetCachedTemplate caches a template for the given key.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) SetCachedTemplate(_ context.Context, key string, tmpl *template.Template) {
	s.templateCacheMu.Lock()
	defer s.templateCacheMu.Unlock()
	s.templateCache[key] = tmpl
}

// GetCachedMarkup returns the cached markup associated with the passed key,
// if any exists.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) GetCachedMarkup(_ context.Context, key string) *string {
	s.markupCacheMu.RLock()
	defer s.markupCacheMu.RUnlock()
	res, ok := s.markupCache[key]
	if !ok {
		return nil
	}
	return &res
}

// SetCachedMarkup caches markup for the given key.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) SetCachedMarkup(_ context.Context, key, markup string) {
	s.markupCacheMu.Lock()
	defer s.markupCacheMu.Unlock()
	s.markupCache[key] = markup
}

// TemplateDir returns the fs.FS passed to NewCachedSite.
func (s *CachedSite) TemplateDir(_ context.Context) fs.FS {
	return s.templateDir
}
