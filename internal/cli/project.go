package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackforge/pkg/engine"
	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/project"
	"github.com/matzehuels/stackforge/pkg/project/store"
	"github.com/matzehuels/stackforge/pkg/resolver"
	"github.com/matzehuels/stackforge/pkg/target"
)

// projectCommand groups the project management subcommands.
func (c *CLI) projectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "p"},
		Short:   "Create, inspect and configure projects",
		Long: `Projects are stored in the directory or database selected by --store
(default: $XDG_DATA_HOME/stackforge/projects). Commands accept a project id,
a unique name, or a unique id prefix of at least four characters.`,
	}

	cmd.AddCommand(c.projectNewCommand())
	cmd.AddCommand(c.projectListCommand())
	cmd.AddCommand(c.projectShowCommand())
	cmd.AddCommand(c.projectToggleCommand(true))
	cmd.AddCommand(c.projectToggleCommand(false))
	cmd.AddCommand(c.projectTargetCommand())
	cmd.AddCommand(c.projectExportCommand())
	cmd.AddCommand(c.projectDeleteCommand())

	return cmd
}

// session bundles what a project command works with.
type session struct {
	eng   *engine.Engine
	store store.Store
}

// withSession loads the engine, opens the store and runs fn.
func (c *CLI) withSession(ctx context.Context, fn func(sess *session) error) error {
	eng, err := c.engine()
	if err != nil {
		return err
	}
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(&session{eng: eng, store: s})
}

// load finds a project and brings it in line with the current tables. A
// repaired project is saved back so the store stays consistent.
func (sess *session) load(ctx context.Context, ref string) (*project.Project, error) {
	p, err := store.Find(ctx, sess.store, ref)
	if err != nil {
		return nil, err
	}
	changes, err := p.Repair(ctx, sess.eng)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		printWarning("Project %s did not match the feature tables and was repaired", p.Name)
		for _, ch := range changes {
			printChange(ch)
		}
		if err := sess.store.Put(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (c *CLI) projectNewCommand() *cobra.Command {
	var lang, fw, description string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a project with every feature disabled",
		Example: `  stackforge project new orders --language java
  stackforge project new shop --framework axum`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, func(sess *session) error {
				l, f, err := resolveTarget(sess.eng, lang, fw)
				if err != nil {
					return err
				}
				p, err := project.New(sess.eng, args[0], l, f)
				if err != nil {
					return err
				}
				p.Description = description
				if err := sess.store.Put(ctx, p); err != nil {
					return err
				}

				printSuccess("Created project %s", StyleHighlight.Render(p.Name))
				printKeyValue("ID", p.ID)
				printKeyValue("Target", targetLabel(sess.eng, p.Language, p.Framework))
				printNewline()
				printNextStep("Enable features", "stackforge project enable "+p.Name+" <feature>")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", "", "target language")
	cmd.Flags().StringVarP(&fw, "framework", "f", "", "target framework (default: the language's first)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "free-form description")
	return cmd
}

func (c *CLI) projectListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, func(sess *session) error {
				prog := newProgress(c.Logger)
				list, err := sess.store.List(ctx)
				if err != nil {
					return err
				}
				c.Logger.Debug("listed projects", "count", len(list), "backend", store.BackendOf(sess.store))
				if len(list) == 0 {
					printInfo("No projects yet")
					printNextStep("Create one", "stackforge project new <name> --language <language>")
					return nil
				}
				for _, p := range list {
					enabled := len(p.Features.EnabledKeys(sess.eng.Catalog()))
					fmt.Printf("%s  %s  %s  %s\n",
						StyleDim.Render(p.ID[:8]),
						StyleHighlight.Render(p.Name),
						StyleValue.Render(targetLabel(sess.eng, p.Language, p.Framework)),
						StyleDim.Render(fmt.Sprintf("%d features", enabled)))
				}
				prog.done(fmt.Sprintf("Listed %d projects", len(list)))
				return nil
			})
		},
	}
}

func (c *CLI) projectShowCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project's target and features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, func(sess *session) error {
				p, err := sess.load(ctx, args[0])
				if err != nil {
					return err
				}

				fmt.Println(StyleTitle.Render(p.Name))
				if p.Description != "" {
					printDetail("%s", p.Description)
				}
				printKeyValue("ID", p.ID)
				printKeyValue("Target", targetLabel(sess.eng, p.Language, p.Framework))
				printKeyValue("Updated", p.UpdatedAt.Local().Format(time.DateTime))
				printNewline()

				rows, err := projectRows(sess.eng, p, all)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					printInfo("No features enabled")
					return nil
				}
				fmt.Println(renderFeatureTable(rows))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "list disabled features too")
	return cmd
}

// projectRows builds table rows for a project's features.
func projectRows(eng *engine.Engine, p *project.Project, all bool) ([]featureRow, error) {
	unsupported, err := eng.UnsupportedFeatures(p.Language, p.Framework)
	if err != nil {
		return nil, err
	}
	blocked := feature.NewSet(unsupported...)

	var rows []featureRow
	for _, info := range eng.Catalog().Infos() {
		on := p.Features.Enabled(info.Key)
		if !on && !all {
			continue
		}
		ok := !blocked.Has(info.Key)
		rows = append(rows, featureRow{
			Info:      info,
			Requires:  eng.Graph().DependenciesOf(info.Key),
			Supported: &ok,
			Enabled:   &on,
		})
	}
	return rows, nil
}

// projectToggleCommand builds "enable" (on) or "disable" (off).
func (c *CLI) projectToggleCommand(on bool) *cobra.Command {
	use, short := "enable", "Enable features, pulling in what they require"
	if !on {
		use, short = "disable", "Disable features, switching off what depends on them"
	}

	return &cobra.Command{
		Use:   use + " <project> <feature>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return c.completeFeatures(nil), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			mutations := make([]resolver.Mutation, 0, len(args)-1)
			for _, key := range args[1:] {
				mutations = append(mutations, resolver.Toggle{Feature: feature.Key(key), On: on})
			}
			return c.applyMutations(cmd.Context(), args[0], mutations)
		},
	}
}

func (c *CLI) projectTargetCommand() *cobra.Command {
	var lang, fw string

	cmd := &cobra.Command{
		Use:   "target <project>",
		Short: "Change a project's language or framework",
		Long: `Change the target of a project. Features the new target does not support
are switched off, together with everything that requires them.`,
		Example: `  stackforge project target shop --framework axum
  stackforge project target orders --language kotlin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m resolver.Mutation
			switch {
			case lang != "":
				m = resolver.ChangeLanguage{Language: target.Language(lang), Framework: target.Framework(fw)}
			case fw != "":
				m = resolver.ChangeFramework{Framework: target.Framework(fw)}
			default:
				return errs.New(errs.ErrCodeInvalidInput, "a --language or --framework is required")
			}
			return c.applyMutations(cmd.Context(), args[0], []resolver.Mutation{m})
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", "", "new language (framework defaults to the language's first)")
	cmd.Flags().StringVarP(&fw, "framework", "f", "", "new framework")
	return cmd
}

// applyMutations runs mutations against a stored project in order, saving
// after each accepted one. It stops at the first rejection.
func (c *CLI) applyMutations(ctx context.Context, ref string, mutations []resolver.Mutation) error {
	return c.withSession(ctx, func(sess *session) error {
		p, err := sess.load(ctx, ref)
		if err != nil {
			return err
		}

		b := project.NewBinder(sess.eng, p,
			project.WithSaver(sess.store),
			project.WithBinderLogger(c.Logger))
		unsubscribe := b.Subscribe(func(_ context.Context, ev project.Event) {
			if !ev.Result.Rejected() {
				printResult(ev.Mutation, ev.Result)
			}
		})
		defer unsubscribe()

		for _, m := range mutations {
			res, err := b.Apply(ctx, m)
			if err != nil {
				return err
			}
			if res.Rejected() {
				return errs.New(errs.ErrCodeUnsupported, "%s", res.Rejection)
			}
		}
		return nil
	})
}

func (c *CLI) projectExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Write the generation config for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, func(sess *session) error {
				p, err := sess.load(ctx, args[0])
				if err != nil {
					return err
				}
				cfg, err := project.Export(sess.eng, p, time.Now())
				if err != nil {
					return err
				}

				out, err := openOutput(output)
				if err != nil {
					return err
				}
				defer out.Close()
				if err := cfg.WriteJSON(out); err != nil {
					return err
				}
				if output != "" {
					printSuccess("Exported %s with %d features", p.Name, len(cfg.Features))
					printFile(output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (c *CLI) projectDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <project>",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, func(sess *session) error {
				p, err := store.Find(ctx, sess.store, args[0])
				if err != nil {
					return err
				}
				if err := sess.store.Delete(ctx, p.ID); err != nil {
					return err
				}
				printSuccess("Deleted project %s", p.Name)
				return nil
			})
		},
	}
}

// targetLabel renders "Java / Spring Boot".
func targetLabel(eng *engine.Engine, lang target.Language, fw target.Framework) string {
	l, fwLabel := string(lang), string(fw)
	if info, ok := eng.Targets().Language(lang); ok {
		l = info.Label
	}
	if info, ok := eng.Targets().Framework(fw); ok {
		fwLabel = info.Label
	}
	return l + " / " + fwLabel
}
