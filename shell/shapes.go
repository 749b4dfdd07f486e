package shell

import (
	"flag"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/ddvk/inkcalc/stroke"
)

func shapesCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "shapes",
		Help: "list shapes on the surface",
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("shapes", flag.ContinueOnError)
			asJSON := flagSet.Bool("json", false, "json output")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}

			shapes := ctx.ink.Shapes()
			if *asJSON {
				if err := displayShapesJSON(c, shapes); err != nil {
					c.Err(err)
				}
				return
			}
			for _, sh := range shapes {
				displayShape(c, sh)
			}
		},
	}
}

func clustersCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "clusters",
		Help: "group the ink into equations",
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("clusters", flag.ContinueOnError)
			distance := flagSet.Float64("d", ctx.cfg.Recognize.ClusterDistance, "max distance between shapes")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}

			clusters := stroke.GroupByProximity(ctx.ink.InkShapes(), *distance)
			for i, cl := range clusters {
				c.Printf("%d\t%d shapes\t%s\n", i, len(cl.Shapes), dimColor(formatBounds(cl.Bounds)))
			}

			if active, ok := stroke.ActiveCluster(ctx.ink.InkShapes(), ctx.cfg.Recognize.BandPadding); ok {
				c.Printf("active\t%d shapes\t%s\n", len(active.Shapes), dimColor(formatBounds(active.Bounds)))
			}
		},
	}
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 0, 64)
}
