package procedure

import (
	"time"

	"github.com/lyzr/sequencer/internal/attribute"
	"github.com/lyzr/sequencer/internal/errs"
	"github.com/lyzr/sequencer/internal/instruction"
	"github.com/lyzr/sequencer/internal/value"
	"github.com/lyzr/sequencer/internal/workspace"
)

// defaultTickTimeout is used when a document supplies no
// "tickTimeoutMs" attribute.
const defaultTickTimeout = 100 * time.Millisecond

// Procedure is one loaded, runnable procedure (spec.md §4.7): its own
// attribute handler (name, tick-timeout), workspace, resolved root
// instruction, and the preamble (plugin names, type registrations)
// that must run before the workspace and root are set up.
type Procedure struct {
	attrs   *attribute.Handler
	plugins []string
	types   []RegisterTypeDoc
	loader  DocLoader

	ws      *workspace.Workspace
	root    instruction.Instruction
	timeout time.Duration
}

// Build constructs an unsetup Procedure from an already-decoded Doc
// (internal/parser turns a JSON or YAML file into one) and a Store for
// resolving any Include instructions the tree contains. Build never
// runs plugins, registers types, or touches the workspace/root
// lifecycle — that is Setup's job; Build only assembles structure.
func Build(doc Doc, store *Store) (*Procedure, error) {
	cat := DefaultCatalogue(store)
	store.SetCatalogue(cat)
	loader := store.Loader()

	ws := workspace.New()
	if err := buildWorkspace(ws, doc.Workspace); err != nil {
		return nil, errs.Wrap(errs.KindProcedureSetup, "workspace construction failed", err)
	}

	root, err := buildRoot(cat, doc)
	if err != nil {
		return nil, errs.Wrap(errs.KindProcedureSetup, "instruction tree construction failed", err)
	}

	attrs := attribute.NewHandler()
	attrs.Define("tickTimeoutMs", value.KindInt64).SetMandatory(false)
	attrs.Define("name", value.KindString).SetMandatory(false)
	for k, v := range doc.Attrs {
		attrs.SetString(k, v)
	}

	timeout := defaultTickTimeout
	if v, ok := attrs.GetValue("tickTimeoutMs"); ok {
		if ms, isInt := v.AsInt64(); isInt && ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}
	}

	return &Procedure{
		attrs:   attrs,
		plugins: doc.Plugins,
		types:   doc.RegisterTypes,
		loader:  loader,
		ws:      ws,
		root:    root,
		timeout: timeout,
	}, nil
}

// Workspace returns the procedure's workspace.
func (p *Procedure) Workspace() *workspace.Workspace { return p.ws }

// Root returns the resolved root instruction.
func (p *Procedure) Root() instruction.Instruction { return p.root }

// NextInstructions returns the leaves the engine will tick next
// (spec.md §4.7/§4.8's next_instructions()), used by a Runner's
// breakpoint check ahead of each tick.
func (p *Procedure) NextInstructions() []instruction.Instruction { return p.root.NextInstructions() }

// TickTimeout returns the per-tick wall-clock budget a Runner should
// enforce (spec.md §4.8), defaulting to 100ms when the document sets
// none.
func (p *Procedure) TickTimeout() time.Duration { return p.timeout }

// Setup validates the procedure's own attributes, runs the preamble
// (plugin loads, then type registrations, in document order), sets up
// the workspace, then sets up the root instruction — spec.md §4.7's
// ordering exactly.
func (p *Procedure) Setup() error {
	if !p.attrs.Validate() {
		return errs.Wrap(errs.KindProcedureSetup, "attribute validation failed",
			errs.AttributeValidation("attribute validation failed", p.attrs.FailedConstraints()))
	}

	for _, name := range p.plugins {
		if err := runPlugin(name); err != nil {
			return errs.Wrap(errs.KindProcedureSetup, "plugin load failed", err)
		}
	}

	for _, rt := range p.types {
		shape, err := decodeRegisterType(rt, p.loader)
		if err != nil {
			return errs.Wrap(errs.KindProcedureSetup, "RegisterType failed", err)
		}
		if err := p.ws.RegisterType(shape); err != nil {
			return errs.Wrap(errs.KindProcedureSetup, "RegisterType failed", err)
		}
	}

	if err := p.ws.Setup(); err != nil {
		return errs.Wrap(errs.KindProcedureSetup, "workspace setup failed", err)
	}

	ctx := instruction.NewContext(p.ws, nil)
	if err := p.root.Setup(ctx); err != nil {
		return errs.Wrap(errs.KindProcedureSetup, "root instruction setup failed", err)
	}
	return nil
}

// ExecuteSingle ticks the root instruction once against obs (spec.md
// §4.7's execute_single(ui)); a nil observer is replaced with
// instruction.DefaultObserver.
func (p *Procedure) ExecuteSingle(obs instruction.Observer) instruction.Status {
	ctx := instruction.NewContext(p.ws, obs)
	return p.root.Tick(ctx)
}

// Reset tears down the workspace, resets the root (which cascades into
// any included sub-trees via Include.ResetHook), and re-initializes
// the workspace so the procedure can run again from a clean state
// (spec.md §4.7's reset(ui)).
func (p *Procedure) Reset(obs instruction.Observer) error {
	if err := p.ws.Teardown(); err != nil {
		return errs.Wrap(errs.KindProcedureSetup, "workspace teardown failed", err)
	}
	ctx := instruction.NewContext(p.ws, obs)
	p.root.Reset(ctx)
	if err := p.ws.Setup(); err != nil {
		return errs.Wrap(errs.KindProcedureSetup, "workspace re-setup failed", err)
	}
	return nil
}

// Halt propagates a halt request to the root instruction.
func (p *Procedure) Halt() { p.root.Halt() }
