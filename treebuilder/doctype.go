package treebuilder

import "strings"

// parseDoctype splits the data of a doctype token into name, public and
// system identifier, and determines the quirks mode it implies.
func parseDoctype(s string) (name, public, system string, mode QuirksMode) {
	space := strings.IndexAny(s, whitespace)
	if space < 0 {
		space = len(s)
	}
	name = s[:space]
	if name != "html" { // case-sensitive
		mode = Quirks
	}
	name = strings.ToLower(name)
	s = strings.TrimLeft(s[space:], whitespace)
	if len(s) < 6 {
		if s != "" {
			mode = Quirks
		}
		return
	}
	var ids []string
	key := strings.ToLower(s[:6])
	s = s[6:]
	hasPublic := key == "public"
	for key == "public" || key == "system" {
		s = strings.TrimLeft(s, whitespace)
		if s == "" || (s[0] != '"' && s[0] != '\'') {
			break
		}
		quote := s[0]
		s = s[1:]
		id := s
		if q := strings.IndexByte(s, quote); q >= 0 {
			id, s = s[:q], s[q+1:]
		} else {
			s = ""
		}
		ids = append(ids, id)
		if key == "public" {
			key = "system"
		} else {
			key = ""
		}
	}
	switch {
	case hasPublic && len(ids) > 0:
		public = ids[0]
		if len(ids) > 1 {
			system = ids[1]
		}
	case len(ids) > 0:
		system = ids[0]
	}
	if key != "" && len(ids) == 0 || strings.TrimLeft(s, whitespace) != "" {
		mode = Quirks
		return
	}
	if mode == Quirks {
		return
	}
	mode = quirksFromIdentifiers(strings.ToLower(public), strings.ToLower(system), hasPublic && len(ids) > 1)
	return
}

func quirksFromIdentifiers(public, system string, hasSystem bool) QuirksMode {
	switch public {
	case "-//w3o//dtd w3 html strict 3.0//en//", "-/w3d/dtd html 4.0 transitional/en", "html":
		return Quirks
	}
	if system == "http://www.ibm.com/data/dtd/v11/ibmxhtml1-transitional.dtd" {
		return Quirks
	}
	for _, prefix := range quirkyPublicIDs {
		if strings.HasPrefix(public, prefix) {
			return Quirks
		}
	}
	transitional := strings.HasPrefix(public, "-//w3c//dtd html 4.01 frameset//") ||
		strings.HasPrefix(public, "-//w3c//dtd html 4.01 transitional//")
	if transitional && !hasSystem {
		return Quirks
	}
	if transitional || strings.HasPrefix(public, "-//w3c//dtd xhtml 1.0 frameset//") ||
		strings.HasPrefix(public, "-//w3c//dtd xhtml 1.0 transitional//") {
		return LimitedQuirks
	}
	return NoQuirks
}

// Public identifier prefixes (lower case) switching a document to quirks mode.
var quirkyPublicIDs = []string{
	"+//silmaril//dtd html pro v0r11 19970101//",
	"-//advasoft ltd//dtd html 3.0 aswedit + extensions//",
	"-//as//dtd html 3.0 aswedit + extensions//",
	"-//ietf//dtd html 2.0",
	"-//ietf//dtd html 2.1e//",
	"-//ietf//dtd html 3",
	"-//ietf//dtd html level ",
	"-//ietf//dtd html strict",
	"-//ietf//dtd html//",
	"-//metrius//dtd metrius presentational//",
	"-//microsoft//dtd internet explorer ",
	"-//netscape comm. corp.//dtd ",
	"-//o'reilly and associates//dtd html ",
	"-//softquad software//dtd hotmetal pro 6.0::19990601::extensions to html 4.0//",
	"-//softquad//dtd hotmetal pro 4.0::19971010::extensions to html 4.0//",
	"-//spyglass//dtd html 2.0 extended//",
	"-//sq//dtd html 2.0 hotmetal + extensions//",
	"-//sun microsystems corp.//dtd hotjava ",
	"-//w3c//dtd html 3",
	"-//w3c//dtd html 4.0 frameset//",
	"-//w3c//dtd html 4.0 transitional//",
	"-//w3c//dtd html experimental ",
	"-//w3c//dtd w3 html//",
	"-//w3o//dtd w3 html 3.0//",
	"-//webtechs//dtd mozilla html",
}
