/*
Package tree implements a generic mutable tree node.

Tree types of the parser (the live document tree in particular) embed a
tree.Node and set its payload to themselves, composing tree behaviour
instead of sub-classing it:

	type Node struct {
		tree.Node[*Node]
		…
	}

	n := &Node{}
	n.Payload = n

Children are kept in a mutex-protected slice; the slice is always dense.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree
