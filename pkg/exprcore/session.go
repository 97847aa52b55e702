package exprcore

import (
	"context"
	"fmt"
	"time"

	"github.com/mcboltdev/exprcore/internal/alloc"
	"github.com/mcboltdev/exprcore/internal/cache"
	"github.com/mcboltdev/exprcore/internal/config"
	"github.com/mcboltdev/exprcore/internal/ir"
	"github.com/mcboltdev/exprcore/internal/optimize"
	"github.com/mcboltdev/exprcore/internal/sanitize"
	"github.com/mcboltdev/exprcore/internal/serialize"
	"github.com/mcboltdev/exprcore/internal/unroll"
)

// Session is the per-compilation "Expression facade" (spec §4.5): it owns
// the temp/const/temp-data allocators, the configured Optimizer, and the
// Serializer, and orchestrates one call to Resolve per logical user
// expression.
type Session struct {
	opts     config.Options
	temp     *alloc.TempAllocator
	constAlc *alloc.ConstAllocator
	tempData *alloc.TempDataAllocator
	unroller *unroll.Unroller
	opt      *optimize.Optimizer
	cache    *cache.ResolveCache
}

// NewSession builds a Session from opts, applying defaults and validating
// the configuration (spec §6). Pass config.Default() to use every default.
func NewSession(opts config.Options) (*Session, error) {
	resolved, err := config.Resolve(opts)
	if err != nil {
		return nil, err
	}

	temp := alloc.NewTempAllocator(resolved.TempObjective)
	constAlc := alloc.NewConstAllocator(resolved.ConstObjective)
	tempData := alloc.NewTempDataAllocator(resolved.TempStorage)

	var resolveCache *cache.ResolveCache
	if resolved.CachePath != "" {
		resolveCache, err = cache.Open(resolved.CachePath)
		if err != nil {
			return nil, fmt.Errorf("exprcore: open resolve cache: %w", err)
		}
	}

	return &Session{
		opts:     resolved,
		temp:     temp,
		constAlc: constAlc,
		tempData: tempData,
		unroller: unroll.New(temp, constAlc, tempData),
		opt:      optimize.New(),
		cache:    resolveCache,
	}, nil
}

// SetDebug toggles the optimizer's between-rule IR revalidation (spec §7:
// "MUST be detectable by running in a debug mode that revalidates IR
// well-formedness between rules").
func (s *Session) SetDebug(debug bool) {
	s.opt.Debug = debug
}

// Close releases the session's resolve cache, if one was opened. Safe to
// call on a Session built without CachePath set.
func (s *Session) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

// cacheKey identifies root under this session's objective naming, so two
// sessions configured with different temp/const/storage names never share
// a cache entry even for structurally identical trees.
func (s *Session) cacheKey(root unroll.Expr) string {
	return s.opts.TempObjective + "|" + s.opts.ConstObjective + "|" + s.opts.TempStorage + "|" + unroll.Key(root)
}

// Resolve compiles one expression tree end-to-end: unroll, optimize,
// serialize (spec §4.5 resolve(root)). When the session's DisableCommands
// option is set, it still runs the full pipeline (so a caller can dry-run
// const interning and catch errors) but returns no command strings.
//
// When a ResolveCache is configured, a structurally identical root (per
// unroll.Key) skips straight to the cached commands — but its interned
// constants are still replayed into this session's ConstAllocator, since
// GenerateInit must emit an init line for every constant any resolved
// expression introduced, cache hit or not.
func (s *Session) Resolve(root unroll.Expr) ([]string, error) {
	key := ""
	if s.cache != nil {
		key = s.cacheKey(root)
		entry, ok, err := s.cache.Lookup(context.Background(), key)
		if err != nil {
			return nil, fmt.Errorf("exprcore: resolve cache lookup: %w", err)
		}
		if ok {
			for _, v := range entry.Consts {
				s.constAlc.Create(v)
			}
			if s.opts.DisableCommands {
				return nil, nil
			}
			return entry.Commands, nil
		}
	}

	ops, _, err := s.unroller.Unroll(root)
	if err != nil {
		return nil, fmt.Errorf("exprcore: unroll: %w", err)
	}

	ctx := &optimize.Context{Temp: s.temp, TempData: s.tempData, Const: s.constAlc}
	ops, err = s.opt.Optimize(ops, ctx)
	if err != nil {
		return nil, fmt.Errorf("exprcore: optimize: %w", err)
	}

	commands, err := serialize.Serialize(ops)
	if err != nil {
		return nil, fmt.Errorf("exprcore: serialize: %w", err)
	}

	if s.cache != nil {
		var consts []int64
		seen := map[int64]bool{}
		for _, op := range ops {
			if ifOp, ok := op.(ir.IfOp); ok {
				op = ifOp.Body
			}
			if sop, ok := op.(ir.ScoreOp); ok {
				if sr, ok := sop.Src.(ir.ScoreRef); ok && sr.Kind == ir.ScoreConst && !seen[sr.ConstValue] {
					seen[sr.ConstValue] = true
					consts = append(consts, sr.ConstValue)
				}
			}
		}
		entry := cache.Entry{Commands: commands, Consts: consts}
		if err := s.cache.Store(context.Background(), key, entry, time.Now().Unix()); err != nil {
			return nil, fmt.Errorf("exprcore: resolve cache store: %w", err)
		}
	}

	if s.opts.DisableCommands {
		s.opts.Logger.Debugf("resolve produced %d commands (suppressed: disable_commands)", len(commands))
		return nil, nil
	}
	return commands, nil
}

// ScanConstRefs runs the AST-level const-ref sanitizer (spec §6) over
// tokens extracted from hand-written commands, auto-registering any
// const-holder-shaped reference into this session's const set.
func (s *Session) ScanConstRefs(tokens []sanitize.PlayerObjective) {
	sanitize.ScanConstRefs(tokens, s.opts.ConstObjective, func(v int64) {
		s.constAlc.Create(v)
	})
}

// GenerateInit emits one command per interned constant, in insertion
// order: `scoreboard players set <$v> <const-objective> <v>` (spec §4.5
// generate_init). Call once at session end; the caller is responsible for
// wrapping the result into the host's init function at opts.InitPath.
func (s *Session) GenerateInit() []string {
	values := s.constAlc.Values()
	out := make([]string, 0, len(values))
	for _, v := range values {
		ref := s.constAlc.Create(v) // idempotent: v is already interned
		out = append(out, fmt.Sprintf("scoreboard players set %s %s %d", ref.Holder, ref.Objective, v))
	}
	return out
}

// InitPath returns the configured location of the generated init function.
func (s *Session) InitPath() string { return s.opts.InitPath }
