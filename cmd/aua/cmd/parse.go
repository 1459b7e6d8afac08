package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jweissman/aua-sub000/internal/lexer"
	"github.com/jweissman/aua-sub000/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse Aua source and print its AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "parse inline code instead of reading from a file")
}

func runParseCmd(_ *cobra.Command, args []string) error {
	input, _, err := readProgram(evalExpr, args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) > 0 {
		fmt.Fprintln(os.Stderr, "parse errors:")
		for _, e := range p.Errors() {
			fmt.Fprintf(os.Stderr, "  %s at line %d, column %d\n", e.Message, e.Pos.Line, e.Pos.Column)
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(p.Errors()))
	}

	for _, s := range program.Statements {
		fmt.Println(s.String())
	}
	return nil
}
