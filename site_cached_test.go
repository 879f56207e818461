package siteheader_test

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"impractical.co/siteheader"
)

type CachedSiteFoo struct{}

func (CachedSiteFoo) Templates(_ context.Context) []string {
	return []string{"base.tmpl", "foo.tmpl"}
}

func (CachedSiteFoo) Key(_ context.Context) string {
	return "foo.tmpl"
}

func (CachedSiteFoo) ExecutedTemplate(_ context.Context) string {
	return "base.tmpl"
}

type CachedSiteBar struct {
	IncludeBaz bool
}

func (bar CachedSiteBar) Templates(_ context.Context) []string {
	templates := []string{"base.tmpl", "bar.tmpl"}
	if bar.IncludeBaz {
		templates = append(templates, "baz.tmpl")
	}
	return templates
}

func (bar CachedSiteBar) Key(_ context.Context) string {
	if bar.IncludeBaz {
		return "bar.tmpl+baz.tmpl"
	}
	return "bar.tmpl"
}

func (CachedSiteBar) ExecutedTemplate(_ context.Context) string {
	return "base.tmpl"
}

func TestCachedSite(t *testing.T) {
	t.Parallel()

	ctx := siteheader.LoggingContext(context.Background(), slog.Default())
	templateFS := fstest.MapFS(map[string]*fstest.MapFile{
		"foo.tmpl": {
			Data:    []byte(`{{ define "template_name" }}foo.tmpl{{ end }}`),
			Mode:    0777,
			ModTime: time.Now(),
		},
		"bar.tmpl": {
			Data:    []byte(`{{ define "template_name" }}bar.tmpl{{ if .Page.IncludeBaz }} {{ block "variable_include" . }}{{ end }}{{ end }}{{ end }}`),
			Mode:    0777,
			ModTime: time.Now(),
		},
		"baz.tmpl": {
			Data:    []byte(`{{ define "variable_include" }}included baz.tmpl{{ end }}`),
			Mode:    0777,
			ModTime: time.Now(),
		},
		"base.tmpl": {
			Data:    []byte(`{{ block "template_name" . }}base.tmpl{{ end }}`),
			Mode:    0777,
			ModTime: time.Now(),
		},
	})
	site := siteheader.NewCachedSite(templateFS)
	renderChangeAndRerender(t, ctx, templateFS, CachedSiteFoo{}, site, "foo.tmpl", "foo.tmpl")
	renderChangeAndRerender(t, ctx, templateFS, CachedSiteBar{}, site, "bar.tmpl", "bar.tmpl")
	renderChangeAndRerender(t, ctx, templateFS, CachedSiteBar{IncludeBaz: true}, site, "bar.tmpl", "bar.tmpl included baz.tmpl")
}

func renderChangeAndRerender(t *testing.T, ctx context.Context, fs fstest.MapFS, page siteheader.Page, site siteheader.Site, file, expected string) {
	t.Helper()

	var out bytes.Buffer
	siteheader.Render(ctx, &out, site, page)
	if output := out.String(); output != expected {
		t.Errorf("Expected to get %q, got %q", expected, output)
	}
	out.Reset()
	oldData := slices.Clone(fs[file].Data)
	fs[file].Data = []byte(strings.ReplaceAll(string(fs[file].Data), file, "changed-"+file))
	siteheader.Render(ctx, &out, site, page)
	if output := out.String(); output != expected {
		t.Errorf("Expected to get %q after modifying underlying data, got %q", expected, output)
	}
	fs[file].Data = oldData
}

// StaleBar returns the same Key whatever it includes, so whichever template
// set is parsed first is the one every StaleBar renders with.
type StaleBar struct {
	CachedSiteBar
}

func (StaleBar) Key(_ context.Context) string {
	return "stale-bar"
}

func TestCachedSiteKeyDeterminesTemplates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	site := siteheader.NewCachedSite(fstest.MapFS{
		"bar.tmpl":  {Data: []byte(`{{ define "template_name" }}bar.tmpl{{ if .Page.IncludeBaz }} {{ block "variable_include" . }}{{ end }}{{ end }}{{ end }}`)},
		"baz.tmpl":  {Data: []byte(`{{ define "variable_include" }}included baz.tmpl{{ end }}`)},
		"base.tmpl": {Data: []byte(`{{ block "template_name" . }}base.tmpl{{ end }}`)},
	})

	var out bytes.Buffer
	require.NoError(t, siteheader.Execute(ctx, &out, site, StaleBar{}))
	require.Equal(t, "bar.tmpl", out.String())

	// baz.tmpl was never parsed for this key, so the empty block is used
	out.Reset()
	require.NoError(t, siteheader.Execute(ctx, &out, site, StaleBar{CachedSiteBar{IncludeBaz: true}}))
	require.Equal(t, "bar.tmpl ", out.String())
}

func TestCachedSiteMarkup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	site := siteheader.NewHeaderSite()

	require.Nil(t, site.GetCachedMarkup(ctx, siteheader.VariantA().Key(ctx)))

	first, err := siteheader.RenderFragment(ctx, site, siteheader.VariantA())
	require.NoError(t, err)

	cached := site.GetCachedMarkup(ctx, siteheader.VariantA().Key(ctx))
	require.NotNil(t, cached)
	require.Equal(t, first, *cached)

	// a planted value proves the second call is served from the cache
	site.SetCachedMarkup(ctx, siteheader.VariantA().Key(ctx), "<header>cached</header>")
	second, err := siteheader.RenderFragment(ctx, site, siteheader.VariantA())
	require.NoError(t, err)
	require.Equal(t, "<header>cached</header>", second)

	// other variants are unaffected
	require.Nil(t, site.GetCachedMarkup(ctx, siteheader.VariantB().Key(ctx)))
}

func TestCachedSiteConcurrentRenders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	site := siteheader.NewHeaderSite()
	want, err := siteheader.RenderFragment(ctx, siteheader.NewHeaderSite(), siteheader.VariantA())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 16)
	errs := make([]error, len(results))
	for pos := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[pos], errs[pos] = siteheader.RenderFragment(ctx, site, siteheader.VariantA())
		}()
	}
	wg.Wait()
	for pos := range results {
		require.NoError(t, errs[pos])
		require.Equal(t, want, results[pos])
	}
}
