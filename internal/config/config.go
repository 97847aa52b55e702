// Package config holds the compile-time options for an expression
// compilation session and the commonlog-backed logger the session reports
// diagnostics through.
package config

import (
	"strings"

	"github.com/tliron/commonlog"
)

// InvalidConfigError reports a malformed Options field.
//
// Mirrors the teacher compiler's CompileError/LexError/ParseError shape: a
// small struct carrying just enough context to format a useful message,
// rather than a bare sentinel error.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "invalid config: " + e.Field + ": " + e.Reason
}

// Options carries the §6 configuration surface for one compilation session.
type Options struct {
	TempObjective     string
	ConstObjective    string
	TempStorage       string
	InitPath          string
	ObjectivePrefix   string
	DisableCommands   bool

	// CachePath, if non-empty, enables a sqlite-backed ResolveCache at this
	// path (":memory:" for a process-local, non-persistent cache). Empty
	// disables caching entirely — the zero value, so caching is opt-in.
	CachePath string

	// Logger receives the session's debug-level diagnostics, such as the
	// note Session.Resolve logs when disable_commands suppresses its output.
	// The optimizer does not log: a rule that meets an unexpected shape
	// leaves the op untouched without emitting a warning, and no IR is
	// dumped. Defaults to a commonlog logger named "exprcore" if left nil by
	// the caller.
	Logger commonlog.Logger
}

// Default returns the §6 default configuration.
func Default() Options {
	return Options{
		TempObjective:   "bolt.expr.temp",
		ConstObjective:  "bolt.expr.const",
		TempStorage:     "bolt.expr:temp",
		InitPath:        "init_expressions",
		ObjectivePrefix: "",
		DisableCommands: false,
	}
}

// Resolve validates opts, applies the objective prefix exactly once, and
// fills in a default logger. It must be called once per session, not once
// per resolve — "objective_prefix... prepended to all objective names" (§6)
// describes a property of the session's objectives, not a per-allocation
// rewrite.
func Resolve(opts Options) (Options, error) {
	if err := validate(opts); err != nil {
		return Options{}, err
	}

	resolved := opts
	resolved.TempObjective = opts.ObjectivePrefix + opts.TempObjective
	resolved.ConstObjective = opts.ObjectivePrefix + opts.ConstObjective

	if resolved.Logger == nil {
		commonlog.Configure(1, nil)
		resolved.Logger = commonlog.GetLogger("exprcore")
	}

	return resolved, nil
}

func validate(opts Options) error {
	for field, value := range map[string]string{
		"temp_objective":  opts.TempObjective,
		"const_objective": opts.ConstObjective,
		"temp_storage":    opts.TempStorage,
		"init_path":       opts.InitPath,
	} {
		if strings.TrimSpace(value) == "" {
			return &InvalidConfigError{Field: field, Reason: "must not be empty"}
		}
		if strings.ContainsAny(value, " \t\r\n") && field != "temp_storage" && field != "init_path" {
			return &InvalidConfigError{Field: field, Reason: "objective names must not contain whitespace"}
		}
	}
	return nil
}
