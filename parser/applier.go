package parser

import (
	"fmt"

	"github.com/Syrcon/servo/dom"
	"github.com/Syrcon/servo/sink"
)

// applyPending applies queued operations in order until the queue is empty,
// the parser suspends or the session ends.
func (p *Parser) applyPending() {
	for !p.IsSuspended() && !p.state.Terminal() {
		env, ok := p.queue.Dequeue()
		if !ok {
			return
		}
		if p.opts.onApply != nil {
			p.opts.onApply(env.Seq, env.Op)
		}
		if err := p.apply(env.Op); err != nil {
			p.abort(fmt.Errorf("%w: operation %d (%v): %w", ErrIntegrity, env.Seq, env.Op, err))
			return
		}
		opsApplied.WithLabelValues(env.Op.Kind()).Inc()
		if p.queue.Done() == 0 {
			p.checkCompletion()
		}
	}
}

// apply performs a single operation on the live tree.
func (p *Parser) apply(op sink.Operation) error {
	tracer().Debugf("apply %v", op)
	switch op := op.(type) {
	case sink.CreateElement:
		return p.nodes.Bind(op.Target, p.doc.CreateElement(op.Name, op.Attrs))
	case sink.CreateComment:
		return p.nodes.Bind(op.Target, p.doc.CreateComment(op.Text))
	case sink.Insert:
		return p.insert(op)
	case sink.AppendDoctype:
		return p.doc.AppendDoctype(op.Name, op.PublicID, op.SystemID)
	case sink.AddAttrsIfMissing:
		n, err := p.nodes.Resolve(op.Target)
		if err != nil {
			return err
		}
		n.AddAttrsIfMissing(op.Attrs)
	case sink.RemoveFromParent:
		n, err := p.nodes.Resolve(op.Target)
		if err != nil {
			return err
		}
		n.Remove()
	case sink.MarkScriptAlreadyStarted:
		n, err := p.nodes.Resolve(op.Target)
		if err != nil {
			return err
		}
		n.MarkScriptStarted()
	case sink.CompleteScript:
		n, err := p.nodes.Resolve(op.Target)
		if err != nil {
			return err
		}
		p.completeScript(n)
	case sink.ReparentChildren:
		n, err := p.nodes.Resolve(op.Node)
		if err != nil {
			return err
		}
		target, err := p.nodes.Resolve(op.NewParent)
		if err != nil {
			return err
		}
		return n.ReparentChildrenTo(target)
	case sink.SetQuirksMode:
		p.doc.SetQuirksMode(op.Mode)
	case sink.TemplateContents:
		n, err := p.nodes.Resolve(op.Template)
		if err != nil {
			return err
		}
		contents := n.TemplateContents()
		if contents == nil {
			return fmt.Errorf("%v is not a template", n)
		}
		return p.nodes.Bind(op.Contents, contents)
	default:
		panic(fmt.Sprintf("parser: unknown operation %T", op))
	}
	return nil
}

func (p *Parser) insert(op sink.Insert) error {
	parent, err := p.nodes.Resolve(op.Parent)
	if err != nil {
		return err
	}
	var sibling *dom.Node
	if h, ok := op.Sibling.Get(); ok {
		if sibling, err = p.nodes.Resolve(h); err != nil {
			return err
		}
	}
	if op.Child.IsText() {
		if sibling != nil {
			return parent.InsertTextBefore(op.Child.Text, sibling)
		}
		return parent.AppendText(op.Child.Text)
	}
	child, err := p.nodes.Resolve(op.Child.Node)
	if err != nil {
		return err
	}
	return parent.InsertBefore(child, sibling)
}

// completeScript hands a parsed script to the script host, unless it has
// already been started.
func (p *Parser) completeScript(script *dom.Node) {
	if script.ScriptStarted() {
		tracer().Debugf("script %v already started", script)
		return
	}
	script.MarkScriptStarted()
	if p.opts.scripts != nil {
		p.opts.scripts.RunScript(p, script)
	}
}
