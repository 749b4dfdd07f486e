package shell

import (
	"errors"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/ddvk/inkcalc/ink"
)

func loadCmd(ctx *ShellCtxt, shell *ishell.Shell) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "load",
		Help:      "load the ink of a .rm page onto the surface",
		Completer: createFileCompleter(".rm"),
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("missing page file"))
				return
			}

			n, err := ctx.LoadPage(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			setPrompt(shell, ctx)
			c.Printf("loaded %d shapes\n", n)
		},
	}
}

func drawCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "draw",
		Help: "add a stroke through the given points",
		LongHelp: `Usage: draw x,y x,y [x,y ...]

Coordinates are page units. The stroke is stored with its first point
as origin.`,
		Func: func(c *ishell.Context) {
			points, err := parsePoints(c.Args)
			if err != nil {
				c.Err(err)
				return
			}

			ox, oy := points[0].X, points[0].Y
			for i := range points {
				points[i].X -= ox
				points[i].Y -= oy
			}
			sh := ctx.ink.Put(ink.NewDrawShape(ox, oy, ink.Segment{Points: points}))
			c.Println(sh.ID)
		},
	}
}

func parsePoints(args []string) ([]ink.Point, error) {
	if len(args) < 2 {
		return nil, errors.New("need at least two points")
	}
	points := make([]ink.Point, 0, len(args))
	for _, a := range args {
		parts := strings.Split(a, ",")
		if len(parts) != 2 {
			return nil, errors.New("point must be x,y: " + a)
		}
		x, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, err
		}
		points = append(points, ink.Point{X: x, Y: y})
	}
	return points, nil
}
