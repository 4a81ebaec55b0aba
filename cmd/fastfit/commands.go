package main

import (
	"fmt"
	"os"

	"github.com/chazu/fastfit/pkg/modal"
	"github.com/chazu/fastfit/pkg/prefs"
	"github.com/chazu/fastfit/pkg/scene"
	"github.com/chazu/fastfit/pkg/tessellate"
	"github.com/chazu/fastfit/pkg/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newTUICommand(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run an interactive fitting session in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.loadWorkspace()
			if err != nil {
				return err
			}
			loader := prefs.NewLoader(opts.prefsPath)
			p, err := loader.Load()
			if err != nil {
				return err
			}
			keymap := prefs.NewKeymap(opts.log)
			keymap.Register(p)
			defer keymap.Unregister()

			committed := false
			model := tui.New(tui.Config{
				Scene:         ws.scene,
				Kernel:        ws.kernel,
				Prefs:         p,
				Keymap:        keymap,
				LastOperation: ws.lastOp,
				OnCommit:      func(modal.Params) { committed = true },
				Log:           opts.log,
			})
			program := tui.NewProgram(model)

			watcher, err := prefs.NewWatcher(loader, keymap, opts.log)
			if err != nil {
				return err
			}
			watcher.OnReload(func(p prefs.Preferences) { program.Send(tui.PrefsMsg(p)) })
			if err := watcher.Start(); err != nil {
				opts.log.Warn().Err(err).Msg("preferences will not reload")
			}
			defer watcher.Stop()

			if _, err := program.Run(); err != nil {
				return err
			}
			if !committed {
				return nil
			}
			ws.lastOp = model.LastOperation()
			path, err := ws.save(out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output scene document (default: the input)")
	return cmd
}

func newPrefsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect or initialise preferences",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := prefs.NewLoader(opts.prefsPath)
			p, err := loader.Load()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", loader.Path(), data)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default preferences file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := prefs.NewLoader(opts.prefsPath)
			path := loader.Path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := loader.Save(prefs.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}

func newKeymapCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keymap",
		Short: "Print the registered key binding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.loadPrefs()
			if err != nil {
				return err
			}
			keymap := prefs.NewKeymap(opts.log)
			keymap.Register(p)
			defer keymap.Unregister()
			for _, b := range keymap.Bindings() {
				fmt.Fprintln(cmd.OutOrStdout(), keymapLine(b))
			}
			return nil
		},
	}
}

func newExportCommand(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the renderable scene as binary STL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			ws, err := opts.loadWorkspace()
			if err != nil {
				return err
			}
			parts, err := tessellate.Tessellate(ws.scene, tessellate.Options{Render: true})
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			mesh := tessellate.Merge(parts)
			if err := tessellate.WriteSTL(f, mesh); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d triangles from %d objects to %s\n",
				mesh.TriangleCount(), len(parts), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output STL file")
	return cmd
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the scene for degenerate or invalid objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.loadWorkspace()
			if err != nil {
				return err
			}
			issues := ws.scene.Validate()
			for _, issue := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), issue.Error())
			}
			if scene.HasErrors(issues) {
				return fmt.Errorf("%d issue(s) in %s", len(issues), ws.path)
			}
			if len(issues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
			}
			return nil
		},
	}
}

// keymapLine renders one binding for display.
func keymapLine(b prefs.Binding) string {
	return fmt.Sprintf("%s → %s", b.Chord, b.Operator)
}
