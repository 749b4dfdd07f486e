package shell

import (
	"context"
	"errors"
	"flag"
	"io/ioutil"

	"github.com/abiosoft/ishell"

	"github.com/ddvk/inkcalc/export"
	"github.com/ddvk/inkcalc/ink"
)

func exportCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "export",
		Help:      "write the surface with its answers to a pdf",
		Completer: createFileCompleter(".pdf"),
		LongHelp: `Usage: export [-n] [-bg background.pdf] <out.pdf>

Options:
  -n   add page numbers
  -bg  draw the ink over the first page of a pdf`,
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("export", flag.ContinueOnError)
			pageNumbers := flagSet.Bool("n", false, "page numbers")
			bg := flagSet.String("bg", "", "background pdf")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}
			if flagSet.NArg() == 0 {
				c.Err(errors.New("missing output file"))
				return
			}

			options := export.Options{AddPageNumbers: *pageNumbers}
			if *bg != "" {
				data, err := ioutil.ReadFile(*bg)
				if err != nil {
					c.Err(err)
					return
				}
				options.Background = data
			}

			out := flagSet.Arg(0)
			gen := export.NewPdfGenerator(options)
			if err := gen.WriteFile([][]*ink.Shape{ctx.ink.Shapes()}, out); err != nil {
				c.Err(err)
				return
			}
			c.Printf("written %s\n", out)
		},
	}
}

func historyCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "history",
		Help: "show recently recognized equations",
		Func: func(c *ishell.Context) {
			if ctx.equations == nil {
				c.Err(errors.New("equation store is disabled (store.enabled)"))
				return
			}
			flagSet := flag.NewFlagSet("history", flag.ContinueOnError)
			limit := flagSet.Int("n", 20, "number of equations")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}

			equations, err := ctx.equations.Recent(context.Background(), *limit)
			if err != nil {
				c.Err(err)
				return
			}
			for _, e := range equations {
				src := e.Latex
				if src == "" {
					src = e.Expression
				}
				c.Printf("%s\t%s\t= %s\t%s\n", dimColor(e.CreatedAt.Format("2006-01-02 15:04:05")),
					latexColor(src), answerColor(e.Value), dimColor(e.Backend))
			}
		},
	}
}
