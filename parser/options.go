package parser

import (
	"github.com/Syrcon/servo/dom"
	"github.com/Syrcon/servo/sink"
	"github.com/Syrcon/servo/treebuilder"
	"github.com/npillmayer/schuko"
)

// DefaultMaxNesting is the default bound for re-entrant drains.
const DefaultMaxNesting = 16

// ScriptHost runs scripts on behalf of the parser. RunScript is called on
// the owner's goroutine once a script element has been parsed completely.
// It may call Suspend, FeedChunk and, later, Resume on p.
type ScriptHost interface {
	RunScript(p *Parser, script *dom.Node)
}

// ScriptHostFunc adapts a function to a ScriptHost.
type ScriptHostFunc func(p *Parser, script *dom.Node)

// RunScript calls f.
func (f ScriptHostFunc) RunScript(p *Parser, script *dom.Node) {
	f(p, script)
}

type options struct {
	maxNesting  int
	builder     treebuilder.Options
	scripts     ScriptHost
	coordinator Coordinator
	onApply     func(seq uint64, op sink.Operation)
	pipeline    PipelineID
}

func defaultOptions() options {
	return options{
		maxNesting: DefaultMaxNesting,
		builder:    treebuilder.DefaultOptions(),
		pipeline:   NewPipelineID(),
	}
}

// Option configures a Parser.
type Option func(*options)

// WithMaxNesting bounds the depth of re-entrant drains.
func WithMaxNesting(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxNesting = n
		}
	}
}

// WithBuilderOptions sets the options of the tree builder.
func WithBuilderOptions(bo treebuilder.Options) Option {
	return func(o *options) {
		o.builder = bo
	}
}

// WithScriptHost sets the host running completed scripts.
func WithScriptHost(h ScriptHost) Option {
	return func(o *options) {
		o.scripts = h
	}
}

// WithCoordinator sets the receiver of the completion notification.
func WithCoordinator(c Coordinator) Option {
	return func(o *options) {
		o.coordinator = c
	}
}

// WithPipeline sets the pipeline id reported on completion.
func WithPipeline(id PipelineID) Option {
	return func(o *options) {
		o.pipeline = id
	}
}

// OnApply installs a hook called right before each operation is applied.
func OnApply(f func(seq uint64, op sink.Operation)) Option {
	return func(o *options) {
		o.onApply = f
	}
}

// FromConfig reads parser options from a configuration:
//
//	parser.maxnesting          bound for re-entrant drains
//	parser.scripting           scripting enabled for the tree builder
//	parser.ignoremissingrules  lenient tree construction
func FromConfig(conf schuko.Configuration) []Option {
	var opts []Option
	if conf == nil {
		return opts
	}
	if conf.IsSet("parser.maxnesting") {
		opts = append(opts, WithMaxNesting(conf.GetInt("parser.maxnesting")))
	}
	bo := treebuilder.DefaultOptions()
	if conf.IsSet("parser.scripting") {
		bo.ScriptingEnabled = conf.GetBool("parser.scripting")
	}
	if conf.IsSet("parser.ignoremissingrules") {
		bo.IgnoreMissingRules = conf.GetBool("parser.ignoremissingrules")
	}
	return append(opts, WithBuilderOptions(bo))
}
