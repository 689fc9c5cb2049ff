package interp

import "io"

// EvalOptions configures an evaluation context.
type EvalOptions struct {
	// Logging configuration
	LogLevel      string    // "error", "warn", "info", "debug" (default: "warn")
	LogTimeFormat string    // strftime pattern for log timestamps
	LogOutput     io.Writer // nil means stderr

	// Diagnostic rendering limits
	DiagMaxPathSegments int // Max navigation segments printed per pointer (default: 16)
}

// DefaultEvalOptions returns the default configuration.
func DefaultEvalOptions() EvalOptions {
	return EvalOptions{
		LogLevel:            "warn",
		LogTimeFormat:       "%Y-%m-%dT%H:%M:%S",
		DiagMaxPathSegments: 16,
	}
}

// scopeFrame holds the blocks allocated in one lexical scope.
type scopeFrame struct {
	locals []*Block
}

// EvalContext is the evaluator-facing environment: it owns the program's
// interned layouts, the stack of lexical scopes, and the list of dead
// blocks kept alive by outstanding pointers.
type EvalContext struct {
	opts    EvalOptions
	logger  Logger
	program *Program

	frames []*scopeFrame
	dead   map[*Block]*DeadBlock
}

// NewEvalContext creates a context with the given options.
func NewEvalContext(opts EvalOptions) *EvalContext {
	level := ParseLogLevel(opts.LogLevel)
	var logger Logger
	if opts.LogOutput == nil && opts.LogLevel == "" {
		logger = newNoopLogger()
	} else {
		logger = NewLogger(level, opts.LogOutput, opts.LogTimeFormat)
	}
	return &EvalContext{
		opts:    opts,
		logger:  logger,
		program: NewProgram(),
		dead:    make(map[*Block]*DeadBlock),
	}
}

// Options returns the context configuration.
func (c *EvalContext) Options() EvalOptions { return c.opts }

// Logger returns the context logger.
func (c *EvalContext) Logger() Logger { return c.logger }

// Program returns the interned layout table.
func (c *EvalContext) Program() *Program { return c.program }

// PushScope enters a lexical scope.
func (c *EvalContext) PushScope() {
	c.frames = append(c.frames, &scopeFrame{})
}

// PopScope exits the innermost scope. Each local block still referenced
// by pointers is demoted to a dead block; the rest are reclaimed.
func (c *EvalContext) PopScope() {
	if len(c.frames) == 0 {
		panic("scope stack underflow")
	}
	frame := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	for i := len(frame.locals) - 1; i >= 0; i-- {
		c.destroyBlock(frame.locals[i])
	}
}

// ScopeDepth returns the number of active scopes.
func (c *EvalContext) ScopeDepth() int { return len(c.frames) }

func (c *EvalContext) currentFrame() *scopeFrame {
	if len(c.frames) == 0 {
		panic("no active scope")
	}
	return c.frames[len(c.frames)-1]
}

// AllocLocal allocates a block for a local declaration in the current
// scope.
func (c *EvalContext) AllocLocal(desc *Descriptor) *Block {
	b := NewBlock(desc)
	c.currentFrame().locals = append(c.currentFrame().locals, b)
	c.logger.Debugf("alloc local block=%d type=%s", b.id, desc)
	return b
}

// AllocTemp allocates a block for a materialized temporary in the
// current scope.
func (c *EvalContext) AllocTemp(desc *Descriptor) *Block {
	b := NewBlock(desc, BlockOpts{IsTemp: true})
	c.currentFrame().locals = append(c.currentFrame().locals, b)
	c.logger.Debugf("alloc temp block=%d type=%s", b.id, desc)
	return b
}

// AllocDynamic allocates a block outside any scope; it stays live until
// Free is called.
func (c *EvalContext) AllocDynamic(desc *Descriptor) *Block {
	b := NewBlock(desc, BlockOpts{IsDynamic: true})
	c.logger.Debugf("alloc dynamic block=%d type=%s", b.id, desc)
	return b
}

// AllocGlobal allocates static storage through the program.
func (c *EvalContext) AllocGlobal(name string, desc *Descriptor) (*Block, error) {
	return c.program.AllocGlobal(name, desc)
}

// Free ends the lifetime of a dynamically allocated block.
func (c *EvalContext) Free(b *Block) {
	if !b.isDynamic {
		panic("free of non-dynamic block")
	}
	c.destroyBlock(b)
}

func (c *EvalContext) destroyBlock(b *Block) {
	if b.NumPointers() > 0 {
		c.dead[b] = &DeadBlock{block: b}
		b.onEmpty = func() {
			delete(c.dead, b)
			c.logger.Debugf("reclaim dead block=%d", b.id)
		}
		c.logger.Debugf("demote block=%d refs=%d", b.id, b.NumPointers())
	}
	b.endLifetime()
}

// DeadBlockCount returns the number of blocks kept alive past their
// scope by outstanding pointers.
func (c *EvalContext) DeadBlockCount() int { return len(c.dead) }

// DeadBlockFor returns the dead-block entry for b, if any.
func (c *EvalContext) DeadBlockFor(b *Block) (*DeadBlock, bool) {
	d, ok := c.dead[b]
	return d, ok
}
