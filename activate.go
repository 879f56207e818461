package siteheader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var activations = newActivationCounter()

func newActivationCounter() metric.Int64Counter {
	counter, err := otel.Meter(instrumentationName).Int64Counter("siteheader.activations",
		metric.WithDescription("Custom tag elements whose content was replaced with rendered markup."),
		metric.WithUnit("{element}"))
	if err != nil {
		return noop.Int64Counter{}
	}
	return counter
}

// Activate parses the HTML document read from in, activates every registered
// tag in it, and writes the resulting document to out.
//
// Activating a document that has already been activated produces the same
// output again, because each tag's content is replaced, not appended to.
func Activate(ctx context.Context, site Site, registry *Registry, in io.Reader, out io.Writer) error {
	doc, err := html.Parse(in)
	if err != nil {
		return fmt.Errorf("error parsing document: %w", err)
	}
	if _, err := ActivateNode(ctx, site, registry, doc); err != nil {
		return err
	}
	if err := html.Render(out, doc); err != nil {
		return fmt.Errorf("error writing document: %w", err)
	}
	return nil
}

// ActivateNode activates every element under root, in document order, whose
// tag name is bound in registry: all of the element's existing children are
// removed and replaced with the markup rendered for the bound Page. The
// rendered markup is not scanned for further tags. Attributes on the element
// are left alone and have no effect on what's rendered.
//
// Every element's markup is rendered before any of them is modified, so when
// an error is returned the tree is left unchanged. A registered element inside
// a <p> is an error, ErrTagInParagraph, because the header's block content
// can't live in a paragraph: serializing it there would produce a document
// that parses back with the header moved out of the tag.
//
// It returns the number of elements activated.
func ActivateNode(ctx context.Context, site Site, registry *Registry, root *html.Node) (int, error) {
	ctx, span := tracer.Start(ctx, "siteheader.Activate")
	defer span.End()

	elements := findTags(root, registry)
	replacements := make([][]*html.Node, 0, len(elements))
	for _, element := range elements {
		children, err := renderElement(ctx, site, registry, element)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "activation failed")
			return 0, err
		}
		replacements = append(replacements, children)
	}
	for pos, element := range elements {
		for child := element.FirstChild; child != nil; child = element.FirstChild {
			element.RemoveChild(child)
		}
		for _, child := range replacements[pos] {
			element.AppendChild(child)
		}
		activations.Add(ctx, 1, metric.WithAttributes(attribute.String("siteheader.tag", element.Data)))
		logger(ctx).DebugContext(ctx, "activated custom tag", "tag", element.Data)
	}
	span.SetAttributes(attribute.Int("siteheader.activated", len(elements)))
	return len(elements), nil
}

// renderElement returns the nodes that will replace element's children,
// without modifying element.
func renderElement(ctx context.Context, site Site, registry *Registry, element *html.Node) ([]*html.Node, error) {
	page, ok := registry.Lookup(element.Data)
	if !ok {
		// findTags only returns registered tags, and tags can't be
		// unregistered
		return nil, fmt.Errorf("error activating <%s>: %w", element.Data, ErrTagNotRegistered)
	}
	if inParagraph(element) {
		return nil, fmt.Errorf("error activating <%s>: %w", element.Data, ErrTagInParagraph)
	}
	if len(element.Attr) > 0 {
		logger(ctx).DebugContext(ctx, "ignoring attributes on custom tag", "tag", element.Data, "attributes", len(element.Attr))
	}
	markup, err := RenderFragment(ctx, site, page)
	if err != nil {
		return nil, fmt.Errorf("error rendering <%s>: %w", element.Data, err)
	}
	children, err := html.ParseFragment(strings.NewReader(markup), element)
	if err != nil {
		return nil, fmt.Errorf("error parsing markup for <%s>: %w", element.Data, err)
	}
	return children, nil
}

// inParagraph reports whether a <p> encloses n before a boundary that
// stops the parser from closing it, mirroring the "button scope" the
// parser checks when a block element starts.
func inParagraph(n *html.Node) bool {
	for parent := n.Parent; parent != nil; parent = parent.Parent {
		if parent.Type != html.ElementNode {
			continue
		}
		switch parent.DataAtom {
		case atom.P:
			return true
		case atom.Button, atom.Applet, atom.Caption, atom.Html, atom.Table,
			atom.Td, atom.Th, atom.Marquee, atom.Object, atom.Template:
			return false
		}
	}
	return false
}

// findTags returns the registered elements under root in document order. It
// doesn't descend into registered elements, since their content is about to
// be replaced.
func findTags(root *html.Node, registry *Registry) []*html.Node {
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, ok := registry.Lookup(n.Data); ok {
				results = append(results, n)
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return results
}
