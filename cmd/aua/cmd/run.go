package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/jweissman/aua-sub000/internal/lexer"
	"github.com/jweissman/aua-sub000/internal/parser"
	"github.com/jweissman/aua-sub000/internal/translator"
	"github.com/jweissman/aua-sub000/pkg/aua"
)

var (
	evalExpr string
	dumpAST  bool
	dumpIR   bool
	trace    bool
	model    string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an Aua program or expression",
	Long: `Execute an Aua program from a file, an inline expression, or stdin.

Examples:
  # Run a script file
  aua run hello.aua

  # Evaluate an inline expression
  aua run -e 'say "hello"'

  # Run with AST/IR dumps (for debugging)
  aua run --dump-ast --dump-ir hello.aua

  # Run a program piped in on stdin
  cat hello.aua | aua run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from a file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST before running")
	runCmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "dump the lowered IR before running")
	runCmd.Flags().BoolVar(&trace, "trace", false, "trace execution to stderr")
	runCmd.Flags().StringVar(&model, "model", "", "model identifier passed to the chat adapter (overrides AUA_MODEL)")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readProgram(evalExpr, args)
	if err != nil {
		return err
	}

	if model != "" {
		os.Setenv("AUA_MODEL", model)
	}

	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			fmt.Fprintf(os.Stderr, "%s at line %d, column %d\n", e.Message, e.Pos.Line, e.Pos.Column)
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(p.Errors()))
	}

	if dumpAST {
		fmt.Println("AST:")
		for _, s := range program.Statements {
			fmt.Println(s.String())
		}
		fmt.Println()
	}

	node := translator.Translate(program)
	if dumpIR {
		fmt.Println("IR:")
		pretty.Println(node)
		fmt.Println()
	}

	if trace {
		fmt.Fprintf(os.Stderr, "[trace] executing %s\n", filename)
	}

	engine := aua.New(aua.WithImportRoot(importRootFor(filename)))
	result, err := engine.Eval(input)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	if trace {
		fmt.Fprintf(os.Stderr, "[trace] result: %s (%s)\n", result.Value, result.TypeOf)
	}
	return nil
}

// readProgram implements the eval/file/stdin trichotomy: an inline -e
// expression wins, then a file argument, then stdin if neither is given.
func readProgram(evalExpr string, args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(content), "<stdin>", nil
}

func importRootFor(filename string) string {
	if filename == "<eval>" || filename == "<stdin>" {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	}
	return filepath.Dir(filename)
}
