package exprcore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcboltdev/exprcore/internal/config"
	"github.com/mcboltdev/exprcore/pkg/exprcore"
)

func newSession(t *testing.T) *exprcore.Session {
	t.Helper()
	s, err := exprcore.NewSession(config.Default())
	require.NoError(t, err)
	return s
}

func TestResolveAddLiteralCollapsesToAdd(t *testing.T) {
	s := newSession(t)
	commands, err := s.Resolve(exprcore.Set(exprcore.Score("@s", "obj"), exprcore.Add(exprcore.Score("@s", "obj"), 5)))
	require.NoError(t, err)
	require.Equal(t, []string{"scoreboard players add @s obj 5"}, commands)
}

func TestResolveSetLiteral(t *testing.T) {
	s := newSession(t)
	commands, err := s.Resolve(exprcore.Set(exprcore.Score("@s", "obj"), 7))
	require.NoError(t, err)
	require.Equal(t, []string{"scoreboard players set @s obj 7"}, commands)
}

func TestResolveMultiplyByConstInternsConstant(t *testing.T) {
	s := newSession(t)
	commands, err := s.Resolve(exprcore.Set(exprcore.Score("@s", "obj"), exprcore.Mul(exprcore.Score("@s", "obj"), 3)))
	require.NoError(t, err)
	require.Equal(t, []string{"scoreboard players operation @s obj *= $3 bolt.expr.const"}, commands)

	init := s.GenerateInit()
	require.Equal(t, []string{"scoreboard players set $3 bolt.expr.const 3"}, init)
}

func TestResolveDataToDataCopy(t *testing.T) {
	s := newSession(t)
	dst := exprcore.Data(exprcore.Storage, "ns:x").Child("a")
	src := exprcore.Data(exprcore.Storage, "ns:y").Child("b")
	commands, err := s.Resolve(exprcore.Set(dst, src))
	require.NoError(t, err)
	require.Equal(t, []string{"data modify storage ns:x a set from storage ns:y b"}, commands)
}

func TestResolveScoreToDataScaled(t *testing.T) {
	s := newSession(t)
	dst := exprcore.Data(exprcore.Storage, "ns:x").Child("a")
	commands, err := s.Resolve(exprcore.Set(dst, exprcore.Mul(exprcore.Score("@s", "obj"), 2)))
	require.NoError(t, err)
	require.Equal(t, []string{"execute store result storage ns:x a int 2 run scoreboard players get @s obj"}, commands)
}

func TestResolveAbs(t *testing.T) {
	s := newSession(t)
	commands, err := s.Resolve(exprcore.Set(exprcore.Score("@s", "obj"), exprcore.Abs(exprcore.Score("@s", "obj"))))
	require.NoError(t, err)
	require.Equal(t, []string{
		"scoreboard players operation $s0 bolt.expr.temp = @s obj",
		"execute if score $s0 bolt.expr.temp matches ..-1 run scoreboard players operation $s0 bolt.expr.temp *= $-1 bolt.expr.const",
		"scoreboard players operation @s obj = $s0 bolt.expr.temp",
	}, commands)
}

func TestTempCounterResetsAcrossResolves(t *testing.T) {
	s := newSession(t)
	_, err := s.Resolve(exprcore.Set(exprcore.Score("@s", "obj"), exprcore.Add(exprcore.Score("@s", "obj"), 1)))
	require.NoError(t, err)

	commands, err := s.Resolve(exprcore.Set(exprcore.Score("@s", "obj2"), exprcore.Abs(exprcore.Score("@s", "obj2"))))
	require.NoError(t, err)
	require.Contains(t, commands[0], "$s0")
}

func TestResolveCacheHitReplaysInternedConsts(t *testing.T) {
	opts := config.Default()
	opts.CachePath = ":memory:"
	s, err := exprcore.NewSession(opts)
	require.NoError(t, err)
	defer s.Close()

	expr := exprcore.Set(exprcore.Score("@s", "obj"), exprcore.Mul(exprcore.Score("@s", "obj"), 3))

	first, err := s.Resolve(expr)
	require.NoError(t, err)

	second, err := s.Resolve(expr)
	require.NoError(t, err)
	require.Equal(t, first, second)

	init := s.GenerateInit()
	require.Equal(t, []string{"scoreboard players set $3 bolt.expr.const 3"}, init)
}

func TestMinVariadicFoldsLiteralTailHostSide(t *testing.T) {
	s := newSession(t)
	commands, err := s.Resolve(exprcore.Set(exprcore.Score("@s", "obj"), exprcore.Min(exprcore.Score("@s", "obj"), 3, 1, 2)))
	require.NoError(t, err)
	// min(3,1,2) folds host-side to the literal 1 before any IR node exists,
	// leaving a single binary Min(score, 1).
	require.Len(t, commands, 1)
	require.Contains(t, commands[0], "<")
}
