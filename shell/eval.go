package shell

import (
	"context"
	"errors"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/ddvk/inkcalc/annotate"
)

func evalCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "eval",
		Help: "evaluate a latex expression locally",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("missing expression"))
				return
			}

			src := strings.Join(c.Args, " ")
			res := ctx.evaluator.Evaluate(src)
			if res.Expression == "" {
				c.Err(errors.New("not an arithmetic expression"))
				return
			}
			if res.Value == "" {
				c.Printf("%s\t%s\n", latexColor(res.Expression), dimColor("no value"))
				return
			}
			c.Printf("%s\t= %s\n", latexColor(res.Expression), answerColor(res.Value))
		},
	}
}

func solveCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "solve",
		Help: "solve an expression with the vision model",
		LongHelp: `Usage: solve [-show] <expression>

Options:
  -show  also place the answer next to the active equation`,
		Func: func(c *ishell.Context) {
			args := c.Args
			show := len(args) > 0 && args[0] == "-show"
			if show {
				args = args[1:]
			}
			if len(args) == 0 {
				c.Err(errors.New("missing expression"))
				return
			}
			if !ctx.vision.Configured() {
				c.Err(errors.New("vision api key is not configured"))
				return
			}

			expression := strings.Join(args, " ")
			c.ProgressBar().Indeterminate(true)
			c.ProgressBar().Start()
			answer, err := ctx.vision.Solve(context.Background(), expression)
			c.ProgressBar().Stop()
			if err != nil {
				c.Err(err)
				return
			}

			c.Printf("%s\t= %s\n", latexColor(expression), answerColor(answer))
			if show {
				display(ctx, annotate.Answer{Expression: expression, Value: answer, Backend: "vision"})
			}
		},
	}
}
