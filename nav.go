package siteheader

import "slices"

// NavEntry is a single link in the header's navigation list.
type NavEntry struct {
	// Label is the text displayed for the link.
	Label string

	// Target is the relative page the link points to.
	Target string
}

var navigation = [...]NavEntry{
	{Label: "home", Target: "index.html"},
	{Label: "about", Target: "about.html"},
	{Label: "contact", Target: "contact.html"},
	{Label: "shop", Target: "shop.html"},
}

// Navigation returns the header's navigation entries, in the order they're
// rendered. The list is fixed; every call returns a new copy of it.
func Navigation() []NavEntry {
	return slices.Clone(navigation[:])
}
