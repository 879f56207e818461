package siteheader

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"maps"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "impractical.co/siteheader"

var tracer = otel.Tracer(instrumentationName)

var (
	// ErrNoTemplatePath is returned when a template path is needed, but
	// none are supplied.
	ErrNoTemplatePath = errors.New("need at least one template path")

	// ErrTemplatePatternMatchesNoFiles is returned when a template path is
	// a pattern, but that pattern doesn't match any files.
	ErrTemplatePatternMatchesNoFiles = errors.New("pattern matches no files")
)

// Component is an interface for a UI component that can be rendered to HTML.
type Component interface {
	// Templates returns a list of filepaths to html/template contents
	// that need to be parsed before the component can be rendered. Paths
	// may be fs.Glob patterns.
	Templates(context.Context) []string
}

// ComponentUser is an interface that a Component can optionally implement to
// list the Components that it relies upon. Their templates and FuncMaps are
// included automatically whenever the Component is rendered.
type ComponentUser interface {
	// UseComponents returns the Components that this Component relies on.
	UseComponents(context.Context) []Component
}

// FuncMapExtender is an interface that Components and Sites can fulfill to
// add to the map of functions available to templates when rendering.
type FuncMapExtender interface {
	// FuncMap returns an html/template.FuncMap containing all the
	// functions that the Component is adding to the FuncMap.
	FuncMap(context.Context) template.FuncMap
}

// Page is an interface for a Component that can be passed to Render. It
// should contain all the information needed to render itself and the
// Components it uses to HTML.
type Page interface {
	Component

	// Key is a unique key to use when caching this page so it doesn't need
	// to be re-parsed. A good key is consistent, but unique per Page.
	Key(context.Context) string

	// ExecutedTemplate is the template that needs to actually be executed
	// when rendering the page.
	ExecutedTemplate(context.Context) string
}

// RenderData is the data that is passed to a page when rendering it.
type RenderData[SiteType Site, PageType Page] struct {
	// Site is an instance of the Site type, containing all the
	// configuration and information about a Site.
	Site SiteType

	// Page is the information for a specific page.
	Page PageType
}

// Render renders the passed Page to the Writer. If it can't, a server error
// page is written instead. If the Site implements ServerErrorPager, that will
// be rendered; if not, a simple text page indicating a server error will be
// written.
func Render[SiteType Site, PageType Page](ctx context.Context, out io.Writer, site SiteType, page PageType) {
	defer func() {
		// if the ResponseWriter can be closed, let's try to close it
		if closer, ok := out.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger(ctx).ErrorContext(ctx, "error closing response writer", "error", err)
			}
		}
	}()

	err := Execute(ctx, out, site, page)
	if err == nil {
		return
	}
	logger(ctx).ErrorContext(ctx, "error rendering page", "error", err, "page", fmt.Sprintf("%T", page))

	if pager, ok := Site(site).(ServerErrorPager); ok {
		err = Execute(ctx, out, site, pager.ServerErrorPage(ctx))
		if err != nil {
			logger(ctx).ErrorContext(ctx, "error rendering server error page", "error", err)
		}
		return
	}

	if _, err = out.Write([]byte("Server error.")); err != nil {
		logger(ctx).ErrorContext(ctx, "error writing server error message", "error", err)
	}
}

// Execute renders the passed Page to the Writer, returning any error
// encountered instead of falling back to a server error page.
func Execute[SiteType Site, PageType Page](ctx context.Context, out io.Writer, site SiteType, page PageType) error {
	key := page.Key(ctx)
	ctx, span := tracer.Start(ctx, "siteheader.Execute", trace.WithAttributes(
		attribute.String("siteheader.page.key", key),
		attribute.String("siteheader.page.type", fmt.Sprintf("%T", page)),
	))
	defer span.End()

	err := execute(ctx, out, site, page, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
	}
	return err
}

func execute[SiteType Site, PageType Page](ctx context.Context, out io.Writer, site SiteType, page PageType, key string) error {
	tmpl, err := getTemplate(ctx, site, page, key)
	if err != nil {
		return err
	}
	data := RenderData[SiteType, PageType]{
		Site: site,
		Page: page,
	}
	executed := page.ExecutedTemplate(ctx)
	if err := tmpl.ExecuteTemplate(out, executed, data); err != nil {
		return fmt.Errorf("error executing template %q for %T: %w", executed, page, err)
	}
	return nil
}

// RenderFragment returns the markup for page as a string. If the Site
// implements MarkupCacher, the markup is looked up by the page's Key first
// and stored there after rendering, so it must only be used with Pages whose
// output is fully determined by their Key.
func RenderFragment(ctx context.Context, site Site, page Page) (string, error) {
	key := page.Key(ctx)
	cache, cacheable := site.(MarkupCacher)
	if cacheable {
		if cached := cache.GetCachedMarkup(ctx, key); cached != nil {
			return *cached, nil
		}
	}
	var buf strings.Builder
	if err := Execute(ctx, &buf, site, page); err != nil {
		return "", err
	}
	markup := buf.String()
	if cacheable {
		cache.SetCachedMarkup(ctx, key, markup)
	}
	return markup, nil
}

func getTemplate(ctx context.Context, site Site, page Page, key string) (*template.Template, error) {
	if cache, ok := site.(TemplateCacher); ok {
		if cached := cache.GetCachedTemplate(ctx, key); cached != nil {
			return cached, nil
		}
	}
	components := getRecursiveComponents(ctx, page)
	tmplPaths := getComponentTemplatePaths(ctx, components)
	if len(tmplPaths) < 1 {
		return nil, fmt.Errorf("error rendering %T: %w", page, ErrNoTemplatePath)
	}
	parsed, err := parseTemplates(site.TemplateDir(ctx), getComponentFuncMap(ctx, site, components), tmplPaths...)
	if err != nil {
		return nil, fmt.Errorf("error parsing templates %v for page %T: %w", tmplPaths, page, err)
	}
	if cache, ok := site.(TemplateCacher); ok {
		cache.SetCachedTemplate(ctx, key, parsed)
	}
	return parsed, nil
}

func getRecursiveComponents(ctx context.Context, component Component) []Component {
	results := []Component{component}
	if uses, ok := component.(ComponentUser); ok {
		for _, child := range uses.UseComponents(ctx) {
			results = append(results, getRecursiveComponents(ctx, child)...)
		}
	}
	return results
}

func getComponentTemplatePaths(ctx context.Context, components []Component) []string {
	var results []string
	seen := map[string]struct{}{}
	for _, comp := range components {
		for _, path := range comp.Templates(ctx) {
			if _, ok := seen[path]; ok {
				continue
			}
			results = append(results, path)
			seen[path] = struct{}{}
		}
	}
	return results
}

// getComponentFuncMap merges the Site's FuncMap with those of every
// Component, later Components overriding earlier ones.
func getComponentFuncMap(ctx context.Context, site Site, components []Component) template.FuncMap {
	results := template.FuncMap{}
	if fm, ok := site.(FuncMapExtender); ok {
		maps.Copy(results, fm.FuncMap(ctx))
	}
	for _, comp := range components {
		if fm, ok := comp.(FuncMapExtender); ok {
			maps.Copy(results, fm.FuncMap(ctx))
		}
	}
	return results
}

func parseTemplates(fsys fs.FS, funcs template.FuncMap, patterns ...string) (*template.Template, error) {
	var files []string
	for _, pattern := range patterns {
		list, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("error listing files for %q: %w", pattern, err)
		}
		if len(list) < 1 {
			return nil, fmt.Errorf("error parsing %q: %w", pattern, ErrTemplatePatternMatchesNoFiles)
		}
		files = append(files, list...)
	}
	tmpl := template.New("").Funcs(funcs)
	for _, file := range files {
		contents, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("error reading %q: %w", file, err)
		}
		if _, err := tmpl.New(file).Parse(string(contents)); err != nil {
			return nil, fmt.Errorf("error parsing %q: %w", file, err)
		}
	}
	return tmpl, nil
}
