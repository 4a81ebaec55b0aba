package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/chazu/fastfit/pkg/fit"
	"github.com/chazu/fastfit/pkg/input"
	"github.com/chazu/fastfit/pkg/modal"
	"github.com/spf13/cobra"
)

func newFitCommand(opts *options) *cobra.Command {
	var (
		events   string
		out      string
		typeName string
		axisName string
		segments int
	)
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit primitives to the selected objects",
		Long: `Fit a bounding cylinder or cube to every selected object.

With --events the session runs interactively and consumes the scripted
events in order, for example "wheel,c,ctrl+wheelup,enter". Without events
the primitives are committed immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.loadWorkspace()
			if err != nil {
				return err
			}
			p, err := opts.loadPrefs()
			if err != nil {
				return err
			}
			params := modal.DefaultParams()
			if cmd.Flags().Changed("type") {
				if params.Type, err = fit.ParsePrimitiveType(typeName); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("axis") {
				if params.Axis, err = fit.ParseAxis(axisName); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("segments") {
				params.Segments = fit.ClampSegments(segments)
			}

			seq, err := input.ParseEvents(events)
			if err != nil {
				return err
			}
			interactive := len(seq) > 0
			if !interactive {
				for _, obj := range ws.scene.Selected() {
					params.Targets = append(params.Targets, obj.Name)
				}
			}

			session := modal.NewSession(modal.Context{
				Scene:       ws.scene,
				Kernel:      ws.kernel,
				Status:      logStatus{log: opts.log},
				Reporter:    cliReporter{w: cmd.ErrOrStderr()},
				Prefs:       &p,
				Interactive: interactive,
				Log:         opts.log,
			}, params)

			state, err := session.Invoke()
			for _, e := range seq {
				if state != modal.StateRunning {
					break
				}
				opts.log.Debug().Str("event", e.String()).Msg("event")
				if state, err = session.Handle(e); err != nil {
					break
				}
			}
			if state == modal.StateRunning {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: events ended before the session finished")
				state = session.Cancel()
			}
			if err != nil && !errors.Is(err, modal.ErrNoSelection) && !errors.Is(err, modal.ErrNoValidTargets) {
				return err
			}
			if state != modal.StateFinished {
				return nil
			}

			last := session.Params()
			ws.lastOp = &last
			path, err := ws.save(out)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), session.Result())
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&events, "events", "", "Comma-separated event script")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output scene document (default: the input)")
	cmd.Flags().StringVar(&typeName, "type", "cylinder", "Primitive type (cylinder|cube)")
	cmd.Flags().StringVar(&axisName, "axis", "z", "Cylinder axis (x|y|z)")
	cmd.Flags().IntVar(&segments, "segments", fit.DefaultSegments, "Cylinder segment count")
	return cmd
}

func newRepeatCommand(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "repeat",
		Short: "Re-run the last fit stored in the scene document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.loadWorkspace()
			if err != nil {
				return err
			}
			if ws.lastOp == nil {
				return fmt.Errorf("%s has no last operation", ws.path)
			}
			p, err := opts.loadPrefs()
			if err != nil {
				return err
			}
			session := modal.NewSession(modal.Context{
				Scene:    ws.scene,
				Kernel:   ws.kernel,
				Reporter: cliReporter{w: cmd.ErrOrStderr()},
				Prefs:    &p,
				Log:      opts.log,
			}, *ws.lastOp)
			state, err := session.Execute()
			if errors.Is(err, modal.ErrNoValidTargets) {
				return nil
			}
			if err != nil || state != modal.StateFinished {
				return err
			}
			path, err := ws.save(out)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), session.Result())
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output scene document (default: the input)")
	return cmd
}

func printResult(w io.Writer, res *modal.CommitResult) {
	if res == nil {
		return
	}
	for _, obj := range res.Created {
		fmt.Fprintf(w, "created %s\n", obj.Name)
	}
	for _, sk := range res.Skipped {
		fmt.Fprintf(w, "skipped %s: %v\n", sk.Name, sk.Err)
	}
}
