// Package siteheader renders a reusable page header, made up of an optional
// signature image linking home, a fixed navigation menu, and a banner image,
// and injects it into host pages wherever a custom tag is used.
//
// siteheader is organized around Components and Pages, built on top of the
// html/template package. A Component is some piece of the HTML document that
// you want included in the page's output. A Page is a Component that gets
// rendered itself rather than being included in another Component. The Header
// type is both: it can be rendered on its own, which is what happens when a
// custom tag is activated, or it can be included in a larger Page that lists
// it in its UseComponents output and invokes the "siteheader" template.
//
// Each server should have a Site, which provides the fs.FS containing the
// templates that Components are using. NewHeaderSite returns a Site backed by
// the templates embedded in this package.
//
// Custom tags are bound to Headers through a Registry. Registration is an
// explicit call made during setup; registering the same definition twice is a
// no-op, while registering a different definition under a name that is
// already taken is an error. Activate then walks a host document and replaces
// the content of every registered tag with the rendered header, in document
// order:
//
//	reg := siteheader.NewRegistry()
//	err := reg.Register(ctx, siteheader.DefaultTagName, siteheader.VariantA())
//	// handle err
//	err = siteheader.Activate(ctx, siteheader.NewHeaderSite(), reg, in, out)
//
// Tag definitions can also be loaded from YAML with LoadConfig.
package siteheader
