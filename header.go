package siteheader

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const (
	// HeaderTemplate defines the "siteheader" template, which renders a
	// Header passed to it as dot. Pages that include a Header should list
	// it in their UseComponents output and invoke
	// {{ template "siteheader" .Page.Header }}.
	HeaderTemplate = "header.html.tmpl"

	headerPageTemplate = "header_page.html.tmpl"
)

// Templates returns an fs.FS containing the templates a Header needs, rooted
// so the paths match those returned by Header.Templates.
func Templates() fs.FS {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		// the directory is embedded at compile time, this can't happen
		panic(err)
	}
	return sub
}

// Signature is the linked logo image at the start of a Header.
type Signature struct {
	// Image is the path to the signature image.
	Image string

	// Href is the page the signature links to, usually the home page.
	Href string
}

// Banner is the decorative image at the bottom of a Header.
type Banner struct {
	// Image is the path to the banner image.
	Image string

	// Alt is the banner's alt text. It's rendered even when empty, marking
	// the banner as decorative.
	Alt string
}

// Header is the page header Component. It has no state beyond the assets it
// was built with, so rendering it always produces the same markup.
type Header struct {
	// Signature is rendered before the navigation when it's set. Leave it
	// nil to omit the signature block entirely.
	Signature *Signature

	// Banner is rendered after the navigation.
	Banner Banner
}

var _ Page = Header{}

// VariantA returns the Header with a signature linking to the home page and
// the "2" banner.
func VariantA() Header {
	return Header{
		Signature: &Signature{
			Image: "artur-home-signature-crop.png",
			Href:  "index.html",
		},
		Banner: Banner{Image: "./artur-home-header-2.png"},
	}
}

// VariantB returns the Header without a signature, using the "3" banner.
func VariantB() Header {
	return Header{
		Banner: Banner{Image: "./artur-home-header-3.png"},
	}
}

// Navigation returns the navigation entries the Header renders. Every Header
// renders the same ones.
func (Header) Navigation() []NavEntry {
	return Navigation()
}

// Templates returns the templates needed to render the Header.
func (Header) Templates(_ context.Context) []string {
	return []string{HeaderTemplate, headerPageTemplate}
}

// ExecutedTemplate returns the template that renders a standalone Header.
func (Header) ExecutedTemplate(_ context.Context) string {
	return headerPageTemplate
}

// Key identifies the Header by the assets it renders. Two Headers with the
// same Key render identical markup.
func (h Header) Key(_ context.Context) string {
	signature := "none"
	if h.Signature != nil {
		signature = fmt.Sprintf("%q,%q", h.Signature.Image, h.Signature.Href)
	}
	return fmt.Sprintf("siteheader(signature=%s banner=%q,%q)", signature, h.Banner.Image, h.Banner.Alt)
}
