/*
Command parsehtml loads HTML documents and prints the parsed trees.

Usage:

	parsehtml parse [flags] <url|file>...

Each document is loaded and parsed on a goroutine of its own. Output is
written in argument order once all documents are parsed.

Configuration is read from parsehtml.yaml in the current directory or in
$HOME/.config/parsehtml, or from the file given with --config. Besides the
keys of packages parser and fetch, trace levels may be set per package:

	tracelevel:
	  servo.parser: Debug
	  servo.engine: Info

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"os"
)

func main() {
	rootCmd := newRootCommand()
	rootCmd.AddCommand(newParseCommand())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
