package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/fastfit/pkg/engine"
	"github.com/chazu/fastfit/pkg/kernel"
	"github.com/chazu/fastfit/pkg/kernel/manifold"
	"github.com/chazu/fastfit/pkg/kernel/polymesh"
	"github.com/chazu/fastfit/pkg/kernel/sdfx"
	"github.com/chazu/fastfit/pkg/modal"
	"github.com/chazu/fastfit/pkg/prefs"
	"github.com/chazu/fastfit/pkg/scene"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// options are the global flags shared by every command.
type options struct {
	scenePath  string
	prefsPath  string
	kernelName string
	cells      int
	verbose    bool

	log zerolog.Logger
}

func newRootCmd(verbose bool) *cobra.Command {
	opts := &options{verbose: verbose, log: zerolog.Nop()}
	root := &cobra.Command{
		Use:           "fastfit",
		Short:         "Fit bounding primitives to scene objects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.log = newLogger(cmd.ErrOrStderr(), opts.verbose)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.scenePath, "scene", "scene.json", "Scene document (.json) or script (.lisp)")
	root.PersistentFlags().StringVar(&opts.prefsPath, "prefs", "", "Preferences file (default ~/.fastfit/prefs.yaml or $FASTFIT_PREFS)")
	root.PersistentFlags().StringVar(&opts.kernelName, "kernel", "polymesh", "Mesh kernel (polymesh|sdfx|manifold)")
	root.PersistentFlags().IntVar(&opts.cells, "cells", 0, "Marching cubes resolution for the sdfx kernel")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", verbose, "Enable debug logging")

	root.AddCommand(
		newFitCommand(opts),
		newRepeatCommand(opts),
		newTUICommand(opts),
		newPrefsCommand(opts),
		newKeymapCommand(opts),
		newExportCommand(opts),
		newValidateCommand(opts),
	)
	return root
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()
}

func (o *options) kernel() (kernel.Kernel, error) {
	switch strings.ToLower(o.kernelName) {
	case "", "polymesh":
		return polymesh.New(), nil
	case "sdfx":
		return sdfx.New(o.cells), nil
	case "manifold":
		return manifold.New()
	}
	return nil, fmt.Errorf("unknown kernel %q, expected polymesh, sdfx or manifold", o.kernelName)
}

func (o *options) loadPrefs() (prefs.Preferences, error) {
	return prefs.NewLoader(o.prefsPath).Load()
}

func isScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lisp", ".zy":
		return true
	}
	return false
}

// workspace is a loaded scene plus where it came from.
type workspace struct {
	scene  *scene.Scene
	kernel kernel.Kernel
	lastOp *modal.Params
	path   string
}

func (o *options) loadWorkspace() (*workspace, error) {
	k, err := o.kernel()
	if err != nil {
		return nil, err
	}
	ws := &workspace{kernel: k, path: o.scenePath}

	if isScript(o.scenePath) {
		src, err := os.ReadFile(o.scenePath)
		if err != nil {
			return nil, err
		}
		s, evalErrs, err := engine.NewEngine(k).Evaluate(string(src))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", o.scenePath, err)
		}
		if len(evalErrs) > 0 {
			return nil, fmt.Errorf("%s: %w", o.scenePath, evalErrs[0])
		}
		ws.scene = s
		return ws, nil
	}

	doc, err := scene.ReadDocument(o.scenePath)
	if err != nil {
		return nil, err
	}
	if ws.scene, err = scene.FromDocument(doc, k); err != nil {
		return nil, fmt.Errorf("%s: %w", o.scenePath, err)
	}
	if len(doc.LastOperation) > 0 {
		var p modal.Params
		if err := json.Unmarshal(doc.LastOperation, &p); err != nil {
			return nil, fmt.Errorf("%s: last operation: %w", o.scenePath, err)
		}
		ws.lastOp = &p
	}
	o.log.Debug().Str("path", o.scenePath).Int("objects", ws.scene.ObjectCount()).Msg("scene loaded")
	return ws, nil
}

// save writes the scene document to out, or back to the source for JSON
// scenes. Scripts are saved next to the source with a .json extension.
func (ws *workspace) save(out string) (string, error) {
	if out == "" {
		out = ws.path
		if isScript(out) {
			out = strings.TrimSuffix(out, filepath.Ext(out)) + ".json"
		}
	}
	doc := ws.scene.Document()
	if ws.lastOp != nil {
		raw, err := json.Marshal(ws.lastOp)
		if err != nil {
			return "", err
		}
		doc.LastOperation = raw
	}
	return out, scene.WriteDocument(out, doc)
}

// cliReporter prints session notices.
type cliReporter struct {
	w io.Writer
}

func (r cliReporter) Report(level modal.Level, msg string) {
	fmt.Fprintf(r.w, "%s: %s\n", level, msg)
}

// logStatus sends status text to the debug log.
type logStatus struct {
	log zerolog.Logger
}

func (s logStatus) SetStatus(text string) { s.log.Debug().Str("status", text).Msg("status") }
func (s logStatus) ClearStatus()          { s.log.Debug().Msg("status cleared") }
