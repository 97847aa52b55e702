package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// pathLexer tokenizes the small NBT path mini-syntax accepted by ParsePath
// ("a.b[0][][{x:1}]"; a compound filter is accepted only inside brackets),
// grounded on kanso's grammar/lexer.go stateful-lexer
// idiom. AllBracket must be tried before LBracket so "[]" lexes as one
// token rather than two.
var pathLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Brace", Pattern: `\{[^}]*\}`},
	{Name: "AllBracket", Pattern: `\[\]`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type pathAST struct {
	Segments []*pathSegmentAST `@@*`
}

type pathSegmentAST struct {
	Key      *string `( "."? @Ident`
	All      bool    `| @AllBracket`
	Index    *string `| "[" ( @Int`
	Compound *string `        | @Brace ) "]" )`
}

var pathParser = participle.MustBuild[pathAST](
	participle.Lexer(pathLexer),
	participle.Elide("Whitespace"),
)

// ParsePath parses the host-facing NBT path mini-syntax into an NbtPath,
// the Go-native replacement for the dynamic `__getattr__`/`__getitem__`
// path-building UX noted as non-semantic in spec §9: this is a real,
// parseable grammar rather than operator overloading.
func ParsePath(s string) (NbtPath, error) {
	doc, err := pathParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parse nbt path %q: %w", s, err)
	}

	path := make(NbtPath, 0, len(doc.Segments))
	for _, seg := range doc.Segments {
		switch {
		case seg.Key != nil:
			path = append(path, NamedKey(*seg.Key))
		case seg.All:
			path = append(path, AllIndex())
		case seg.Index != nil:
			idx, err := strconv.Atoi(*seg.Index)
			if err != nil {
				return nil, fmt.Errorf("parse nbt path %q: bad index %q", s, *seg.Index)
			}
			path = append(path, ListIndex(idx))
		case seg.Compound != nil:
			compound, err := parseCompoundLiteral(*seg.Compound)
			if err != nil {
				return nil, fmt.Errorf("parse nbt path %q: %w", s, err)
			}
			path = append(path, CompoundMatch(compound))
		}
	}
	return path, nil
}

// parseCompoundLiteral parses a flat, non-nested "{key:value,key:value}"
// literal into a Compound. This is deliberately a light-weight subset of
// SNBT: the real NBT grammar is the embedding host's command parser's
// concern (an external collaborator per spec §1), not this core's.
func parseCompoundLiteral(raw string) (map[string]NbtValue, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "{")
	body = strings.TrimSuffix(body, "}")
	body = strings.TrimSpace(body)

	result := map[string]NbtValue{}
	if body == "" {
		return result, nil
	}

	for _, pair := range strings.Split(body, ",") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed compound entry %q", pair)
		}
		key := strings.TrimSpace(kv[0])
		result[key] = parseScalarLiteral(strings.TrimSpace(kv[1]))
	}
	return result, nil
}

func parseScalarLiteral(tok string) NbtValue {
	lower := strings.ToLower(tok)
	switch {
	case strings.HasSuffix(lower, "b") && isIntPrefix(tok[:len(tok)-1]):
		v, _ := strconv.ParseInt(tok[:len(tok)-1], 10, 64)
		return ByteValue(v)
	case strings.HasSuffix(lower, "s") && isIntPrefix(tok[:len(tok)-1]):
		v, _ := strconv.ParseInt(tok[:len(tok)-1], 10, 64)
		return ShortValue(v)
	case strings.HasSuffix(lower, "l") && isIntPrefix(tok[:len(tok)-1]):
		v, _ := strconv.ParseInt(tok[:len(tok)-1], 10, 64)
		return LongValue(v)
	case strings.HasSuffix(lower, "f") && isFloatPrefix(tok[:len(tok)-1]):
		v, _ := strconv.ParseFloat(tok[:len(tok)-1], 64)
		return FloatValue(v)
	case strings.HasSuffix(lower, "d") && isFloatPrefix(tok[:len(tok)-1]):
		v, _ := strconv.ParseFloat(tok[:len(tok)-1], 64)
		return DoubleValue(v)
	}
	if v, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return IntValue(v)
	}
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return DoubleValue(v)
	}
	return StringValue(strings.Trim(tok, `"`))
}

func isIntPrefix(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloatPrefix(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
