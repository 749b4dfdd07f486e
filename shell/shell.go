// Package shell is the interactive inkcalc prompt.
package shell

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/ddvk/inkcalc/annotate"
	"github.com/ddvk/inkcalc/config"
	"github.com/ddvk/inkcalc/encoding/rm"
	"github.com/ddvk/inkcalc/entitlement"
	"github.com/ddvk/inkcalc/eval"
	"github.com/ddvk/inkcalc/hwr"
	"github.com/ddvk/inkcalc/ink"
	"github.com/ddvk/inkcalc/log"
	"github.com/ddvk/inkcalc/recognize"
	"github.com/ddvk/inkcalc/store"
	"github.com/ddvk/inkcalc/vision"
)

var (
	answerColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	latexColor  = color.New(color.FgCyan).SprintFunc()
	dimColor    = color.New(color.Faint).SprintFunc()
)

// ShellCtxt holds one drawing surface and the engine working on it.
type ShellCtxt struct {
	cfg          config.Config
	page         string
	ink          *ink.Store
	annotator    *annotate.Manager
	orchestrator *recognize.Orchestrator
	evaluator    *eval.Adapter
	vision       *vision.Client
	equations    *store.Store
}

// NewShellCtxt wires the engine from cfg.
func NewShellCtxt(cfg config.Config) (*ShellCtxt, error) {
	ctx := &ShellCtxt{
		cfg:       cfg,
		ink:       ink.NewStore(),
		evaluator: eval.NewAdapter(),
	}
	ctx.annotator = annotate.NewManager(ctx.ink)

	hwrClient := hwr.NewClient(cfg.Hwr.ApplicationKey, cfg.Hwr.HmacKey)
	hwrClient.URL = cfg.Hwr.URL
	strokeRecognizer := recognize.NewStrokeRecognizer(hwrClient)
	strokeRecognizer.Options = hwr.Options{XDPI: cfg.Hwr.XDPI, YDPI: cfg.Hwr.YDPI, Lang: cfg.Hwr.Lang}

	ctx.vision = vision.NewClient(cfg.Vision.APIKey,
		vision.WithURL(cfg.Vision.URL),
		vision.WithModel(cfg.Vision.Model),
		vision.WithRateLimit(cfg.Vision.RateLimit, cfg.Vision.Burst),
		vision.WithRetries(cfg.Vision.Retries),
	)

	opts := []recognize.Option{
		recognize.WithDebounce(cfg.Recognize.Debounce),
		recognize.WithDedupWindow(cfg.Recognize.DedupWindow),
		recognize.WithBandPadding(cfg.Recognize.BandPadding),
		recognize.WithCacheTTL(cfg.Recognize.CacheTTL),
		recognize.WithTimeout(cfg.Recognize.Timeout),
	}

	if cfg.Entitlement.Token != "" {
		checker, err := entitlement.NewTokenChecker([]byte(cfg.Entitlement.Key), cfg.Entitlement.Token)
		if err != nil {
			return nil, err
		}
		opts = append(opts, recognize.WithEntitlement(checker))
	}

	if cfg.Store.Enabled {
		equations, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		ctx.equations = equations
		opts = append(opts, recognize.WithSaver(equations))
	}

	ctx.orchestrator = recognize.New(ctx.ink, ctx.annotator, []recognize.Recognizer{
		strokeRecognizer,
		recognize.NewVisionRecognizer(ctx.vision),
	}, opts...)

	return ctx, nil
}

// Close releases the orchestrator and the equation store.
func (ctx *ShellCtxt) Close() error {
	ctx.orchestrator.Close()
	if ctx.equations != nil {
		return ctx.equations.Close()
	}
	return nil
}

func (ctx *ShellCtxt) Store() *ink.Store { return ctx.ink }

func (ctx *ShellCtxt) Orchestrator() *recognize.Orchestrator { return ctx.orchestrator }

// LoadPage replaces the surface content with the ink of a .rm page.
func (ctx *ShellCtxt) LoadPage(path string) (int, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "can't read page")
	}
	var page rm.Rm
	if err := page.UnmarshalBinary(data); err != nil {
		return 0, errors.Wrapf(err, "can't decode %s", path)
	}

	for _, sh := range ctx.ink.Shapes() {
		ctx.ink.Delete(sh.ID)
	}
	shapes := page.Shapes()
	for _, sh := range shapes {
		ctx.ink.Put(sh)
	}
	ctx.page = path
	log.Trace.Printf("shell: loaded %d shapes from %s", len(shapes), path)
	return len(shapes), nil
}

func (ctx *ShellCtxt) prompt() string {
	name := "inkcalc"
	if ctx.page != "" {
		name = filepath.Base(ctx.page)
	}
	if ctx.orchestrator.Attached() {
		name += "*"
	}
	return fmt.Sprintf("[%s]>", name)
}

func setPrompt(shell *ishell.Shell, ctx *ShellCtxt) {
	shell.SetPrompt(ctx.prompt())
}

// RunShell runs args as a single command, or the interactive prompt when
// args is empty.
func RunShell(ctx *ShellCtxt, args []string) error {
	shell := ishell.New()
	setPrompt(shell, ctx)

	shell.AddCmd(loadCmd(ctx, shell))
	shell.AddCmd(drawCmd(ctx))
	shell.AddCmd(shapesCmd(ctx))
	shell.AddCmd(clustersCmd(ctx))
	shell.AddCmd(recognizeCmd(ctx))
	shell.AddCmd(watchCmd(ctx, shell))
	shell.AddCmd(evalCmd(ctx))
	shell.AddCmd(solveCmd(ctx))
	shell.AddCmd(answersCmd(ctx))
	shell.AddCmd(exportCmd(ctx))
	shell.AddCmd(historyCmd(ctx))

	if len(args) > 0 {
		return shell.Process(args...)
	}

	shell.Println("inkcalc: handwritten math shell, type help for commands")
	shell.Run()
	return nil
}

// createFileCompleter completes local files with the given extensions.
func createFileCompleter(exts ...string) func([]string) []string {
	return func(args []string) []string {
		dir := "."
		if len(args) > 0 {
			dir = filepath.Dir(args[len(args)-1])
		}
		entries, err := ioutil.ReadDir(dir)
		if err != nil {
			return nil
		}
		var out []string
		for _, e := range entries {
			name := e.Name()
			if dir != "." {
				name = filepath.Join(dir, name)
			}
			if e.IsDir() {
				out = append(out, name+string(os.PathSeparator))
				continue
			}
			for _, ext := range exts {
				if strings.EqualFold(filepath.Ext(name), ext) {
					out = append(out, name)
				}
			}
		}
		return out
	}
}
