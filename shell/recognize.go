package shell

import (
	"context"
	"errors"
	"flag"

	"github.com/abiosoft/ishell"

	"github.com/ddvk/inkcalc/annotate"
	"github.com/ddvk/inkcalc/ink"
	"github.com/ddvk/inkcalc/recognize"
	"github.com/ddvk/inkcalc/stroke"
)

func recognizeCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "recognize",
		Help: "recognize the active equation, or all of them",
		LongHelp: `Usage: recognize [-a] [-d distance]

Options:
  -a           recognize every equation on the surface
  -d distance  max distance between shapes of one equation (with -a)`,
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("recognize", flag.ContinueOnError)
			all := flagSet.Bool("a", false, "all equations")
			distance := flagSet.Float64("d", ctx.cfg.Recognize.ClusterDistance, "max distance between shapes")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}

			if !*all {
				res, err := ctx.orchestrator.Flush(context.Background())
				if err != nil {
					c.Err(err)
					return
				}
				if !res.Usable() {
					c.Println("already recognized")
					return
				}
				printResult(c, res)
				return
			}

			clusters := stroke.GroupByProximity(ctx.ink.InkShapes(), *distance)
			if len(clusters) == 0 {
				c.Err(errors.New("no ink"))
				return
			}
			outcomes := ctx.orchestrator.RecognizeAll(context.Background(), clusters, ctx.cfg.Recognize.Parallelism)
			for i, o := range outcomes {
				if o.Err != nil {
					c.Printf("%d\t%s\n", i, dimColor(o.Err.Error()))
					continue
				}
				c.Printf("%d\t", i)
				printResult(c, o.Result)
			}
		},
	}
}

func printResult(c *ishell.Context, res recognize.Result) {
	src := res.Latex
	if src == "" {
		src = res.Expression
	}
	c.Printf("%s\t= %s\t%s\n", latexColor(src), answerColor(res.Value), dimColor(res.Backend))
}

func watchCmd(ctx *ShellCtxt, shell *ishell.Shell) *ishell.Cmd {
	var unsubscribe func()
	return &ishell.Cmd{
		Name: "watch",
		Help: "recognize automatically while drawing (on|off)",
		Func: func(c *ishell.Context) {
			on := !ctx.orchestrator.Attached()
			if len(c.Args) > 0 {
				on = c.Args[0] == "on"
			}

			if on {
				ctx.orchestrator.Attach()
				if unsubscribe == nil {
					unsubscribe = ctx.ink.Subscribe(func(ch ink.Change) {
						if ch.Kind == ink.Added && ch.Shape.IsSystem() {
							shell.Printf("\n%s\n", answerColor(ch.Shape.Text))
						}
					})
				}
			} else {
				ctx.orchestrator.Detach()
				if unsubscribe != nil {
					unsubscribe()
					unsubscribe = nil
				}
			}
			setPrompt(shell, ctx)
			c.Printf("watch: %v\n", on)
		},
	}
}

func answersCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "answers",
		Help: "list answer annotations, or remove them with 'answers clear'",
		Func: func(c *ishell.Context) {
			if len(c.Args) > 0 && c.Args[0] == "clear" {
				c.Printf("removed %d\n", ctx.annotator.Sweep())
				return
			}
			for _, sh := range ctx.ink.SystemShapes() {
				c.Printf("%s\t%s\t%s\n", answerColor(sh.Text),
					latexColor(sh.Meta[ink.MetaExpression]), dimColor(sh.Meta[ink.MetaBackend]))
			}
		},
	}
}

// display shows a shell computed answer next to the active equation.
func display(ctx *ShellCtxt, a annotate.Answer) {
	if active, ok := stroke.ActiveCluster(ctx.ink.InkShapes(), ctx.cfg.Recognize.BandPadding); ok {
		ctx.annotator.Display(a, active.Bounds)
	}
}
