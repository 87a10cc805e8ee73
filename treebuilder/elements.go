package treebuilder

import "golang.org/x/net/html/atom"

type atomSet map[atom.Atom]bool

func setOf(atoms ...atom.Atom) atomSet {
	s := make(atomSet, len(atoms))
	for _, a := range atoms {
		s[a] = true
	}
	return s
}

func (s atomSet) union(atoms ...atom.Atom) atomSet {
	u := make(atomSet, len(s)+len(atoms))
	for a := range s {
		u[a] = true
	}
	for _, a := range atoms {
		u[a] = true
	}
	return u
}

var voidElements = setOf(atom.Area, atom.Base, atom.Basefont, atom.Bgsound,
	atom.Br, atom.Col, atom.Embed, atom.Frame, atom.Hr, atom.Img, atom.Input,
	atom.Keygen, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track, atom.Wbr)

var formattingElements = setOf(atom.A, atom.B, atom.Big, atom.Code, atom.Em,
	atom.Font, atom.I, atom.Nobr, atom.S, atom.Small, atom.Strike, atom.Strong,
	atom.Tt, atom.U)

var specialElements = setOf(atom.Address, atom.Applet, atom.Area, atom.Article,
	atom.Aside, atom.Base, atom.Basefont, atom.Bgsound, atom.Blockquote, atom.Body,
	atom.Br, atom.Button, atom.Caption, atom.Center, atom.Col, atom.Colgroup,
	atom.Dd, atom.Details, atom.Dir, atom.Div, atom.Dl, atom.Dt, atom.Embed,
	atom.Fieldset, atom.Figcaption, atom.Figure, atom.Footer, atom.Form,
	atom.Frame, atom.Frameset, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5,
	atom.H6, atom.Head, atom.Header, atom.Hgroup, atom.Hr, atom.Html, atom.Iframe,
	atom.Img, atom.Input, atom.Keygen, atom.Li, atom.Link, atom.Listing, atom.Main,
	atom.Marquee, atom.Menu, atom.Meta, atom.Nav, atom.Noembed, atom.Noframes,
	atom.Noscript, atom.Object, atom.Ol, atom.P, atom.Param, atom.Plaintext,
	atom.Pre, atom.Script, atom.Section, atom.Select, atom.Source, atom.Style,
	atom.Summary, atom.Table, atom.Tbody, atom.Td, atom.Template, atom.Textarea,
	atom.Tfoot, atom.Th, atom.Thead, atom.Title, atom.Tr, atom.Track, atom.Ul,
	atom.Wbr, atom.Xmp)

// Start tags closing an open paragraph.
var blockElements = setOf(atom.Address, atom.Article, atom.Aside,
	atom.Blockquote, atom.Center, atom.Details, atom.Dialog, atom.Dir, atom.Div,
	atom.Dl, atom.Fieldset, atom.Figcaption, atom.Figure, atom.Footer,
	atom.Header, atom.Hgroup, atom.Main, atom.Menu, atom.Nav, atom.Ol, atom.P,
	atom.Section, atom.Summary, atom.Ul)

// End tags closing an element of the same name if in scope.
var blockEndElements = blockElements.union(atom.Button, atom.Listing, atom.Pre)

var headingElements = setOf(atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6)

var headElements = setOf(atom.Base, atom.Basefont, atom.Bgsound, atom.Link,
	atom.Meta, atom.Noframes, atom.Script, atom.Style, atom.Template, atom.Title)

var impliedEndElements = setOf(atom.Dd, atom.Dt, atom.Li, atom.Optgroup,
	atom.Option, atom.P, atom.Rb, atom.Rp, atom.Rt, atom.Rtc)

var thoroughlyImpliedEndElements = impliedEndElements.union(atom.Caption,
	atom.Colgroup, atom.Tbody, atom.Td, atom.Tfoot, atom.Th, atom.Thead, atom.Tr)

var defaultScope = setOf(atom.Applet, atom.Caption, atom.Html, atom.Table,
	atom.Td, atom.Th, atom.Marquee, atom.Object, atom.Template)

var listItemScope = defaultScope.union(atom.Ol, atom.Ul)

var buttonScope = defaultScope.union(atom.Button)

var tableScope = setOf(atom.Html, atom.Table, atom.Template)

var tableSectionElements = setOf(atom.Tbody, atom.Tfoot, atom.Thead)

// Elements below which foster parenting applies.
var fosterTargets = setOf(atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr)

var tableStructure = setOf(atom.Caption, atom.Col, atom.Colgroup, atom.Tbody,
	atom.Td, atom.Tfoot, atom.Th, atom.Thead, atom.Tr)

// Foreign elements bounding scopes and hosting HTML content.
var integrationPoints = map[QualName]bool{
	{NamespaceSVG, "foreignObject"}: true,
	{NamespaceSVG, "desc"}:          true,
	{NamespaceSVG, "title"}:         true,
	{NamespaceMathML, "mi"}:         true,
	{NamespaceMathML, "mo"}:         true,
	{NamespaceMathML, "mn"}:         true,
	{NamespaceMathML, "ms"}:         true,
	{NamespaceMathML, "mtext"}:      true,
}
