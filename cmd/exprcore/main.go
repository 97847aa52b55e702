// Command exprcore is a small demo driver for the expression compilation
// core: it builds a handful of sample expressions end-to-end through one
// Session and prints the commands each one resolves to, mirroring the
// teacher CLI's "compile one input, run it, report the result" shape.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/mcboltdev/exprcore/internal/config"
	"github.com/mcboltdev/exprcore/pkg/exprcore"
)

func main() {
	dump := false
	debug := false
	useCache := false
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-dump":
			dump = true
		case "-debug":
			debug = true
		case "-cache":
			useCache = true
		default:
			fmt.Fprintf(os.Stderr, "unrecognized flag %q\n", arg)
			os.Exit(1)
		}
	}

	opts := config.Default()
	if useCache {
		opts.CachePath = ":memory:"
	}
	session, err := exprcore.NewSession(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()
	session.SetDebug(debug)

	for _, sample := range samples() {
		commands, err := session.Resolve(sample.expr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: resolve error: %v\n", sample.name, err)
			os.Exit(1)
		}
		printResult(sample.name, commands, dump)
	}

	if init := session.GenerateInit(); len(init) > 0 {
		printResult("init@"+session.InitPath(), init, dump)
	}
}

type sample struct {
	name string
	expr exprcore.Expr
}

func samples() []sample {
	return []sample{
		{"add-literal", exprcore.Set(exprcore.Score("@s", "obj"), exprcore.Add(exprcore.Score("@s", "obj"), 5))},
		{"set-literal", exprcore.Set(exprcore.Score("@s", "obj"), 7)},
		{"mul-const", exprcore.Set(exprcore.Score("@s", "obj"), exprcore.Mul(exprcore.Score("@s", "obj"), 3))},
		{"data-copy", exprcore.Set(exprcore.Data(exprcore.Storage, "ns:x").Child("a"), exprcore.Data(exprcore.Storage, "ns:y").Child("b"))},
		{"score-to-data-scaled", exprcore.Set(exprcore.Data(exprcore.Storage, "ns:x").Child("a"), exprcore.Mul(exprcore.Score("@s", "obj"), 2))},
		{"abs", exprcore.Set(exprcore.Score("@s", "obj"), exprcore.Abs(exprcore.Score("@s", "obj")))},
	}
}

func printResult(name string, commands []string, dump bool) {
	if !dump || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("# %s\n", name)
		for _, c := range commands {
			fmt.Println(c)
		}
		return
	}

	header := color.New(color.Bold, color.FgCyan).SprintFunc()
	command := color.New(color.FgGreen).SprintFunc()
	fmt.Println(header("# " + name))
	for _, c := range commands {
		fmt.Println(command(c))
	}
}
