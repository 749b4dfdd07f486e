package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ddvk/inkcalc/annotate"
	"github.com/ddvk/inkcalc/config"
	"github.com/ddvk/inkcalc/export"
	"github.com/ddvk/inkcalc/ink"
	"github.com/ddvk/inkcalc/log"
	"github.com/ddvk/inkcalc/shell"
	"github.com/ddvk/inkcalc/stroke"
)

func main() {
	configName := flag.String("c", config.DefaultPath(), "config file")
	inputName := flag.String("i", "", "page to recognize (.rm)")
	outputName := flag.String("o", "", "write the annotated page to this pdf")
	flag.Parse()

	cfg, err := config.Load(*configName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Init(log.Config{Trace: cfg.Log.Trace, File: cfg.Log.File})
	defer log.Sync()

	ctx, err := shell.NewShellCtxt(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer ctx.Close()

	if *inputName != "" {
		err = recognizePage(ctx, cfg, *inputName, *outputName)
	} else {
		err = shell.RunShell(ctx, flag.Args())
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		ctx.Close()
		os.Exit(1)
	}
}

// recognizePage prints every equation of a page with its answer and
// optionally exports the page with the answers placed next to them.
func recognizePage(ctx *shell.ShellCtxt, cfg config.Config, inputName, outputName string) error {
	if _, err := ctx.LoadPage(inputName); err != nil {
		return err
	}

	clusters := stroke.GroupByProximity(ctx.Store().InkShapes(), cfg.Recognize.ClusterDistance)
	if len(clusters) == 0 {
		return errors.New("no ink on page")
	}

	outcomes := ctx.Orchestrator().RecognizeAll(context.Background(), clusters, cfg.Recognize.Parallelism)

	var answers []*ink.Shape
	for i, o := range outcomes {
		if o.Err != nil || !o.Result.Usable() {
			log.Trace.Printf("equation %d: %v", i, o.Err)
			continue
		}
		src := o.Result.Latex
		if src == "" {
			src = o.Result.Expression
		}
		fmt.Printf("%s\t= %s\n", src, o.Result.Value)

		answers = append(answers, annotate.NewAnnotation(annotate.Answer(o.Result), o.Cluster.Bounds,
			annotate.DefaultMargin, annotate.DefaultBaselineOffset))
	}

	if outputName == "" {
		return nil
	}
	if strings.ToLower(filepath.Ext(outputName)) != ".pdf" {
		return fmt.Errorf("output must be a .pdf: %s", outputName)
	}
	page := append(ctx.Store().Shapes(), answers...)
	return export.NewPdfGenerator(export.Options{}).WriteFile([][]*ink.Shape{page}, outputName)
}
