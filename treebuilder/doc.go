/*
Package treebuilder builds HTML document trees from a token stream.

The builder follows the insertion modes of the HTML tree construction
algorithm closely enough for real-world documents: implied html, head and
body elements, auto-closing paragraphs and list items, tables with foster
parenting, active formatting elements with the adoption agency, templates
and foreign (SVG/MathML) content. Tokens come from golang.org/x/net/html's
Tokenizer.

The builder never holds nodes. It is generic over a handle type H and
talks to the tree through a TreeSink[H] only, so a sink may translate
every callback into a message for some other goroutine.

	b := treebuilder.New[MyHandle](mySink, treebuilder.DefaultOptions())
	for { … b.Process(z.Token()) … }
	b.End()

Constructs the builder has no rule for (framesets, for example) are
reported as parse errors when Options.IgnoreMissingRules is set, and panic
otherwise.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package treebuilder

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'servo.treebuilder'.
func tracer() tracing.Trace {
	return tracing.Select("servo.treebuilder")
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("treebuilder: "+msg, msgargs...)
		panic(msg)
	}
}
