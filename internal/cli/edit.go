package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackforge/pkg/project"
)

// editCommand opens the interactive feature editor for one project.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <project>",
		Short: "Toggle a project's features interactively",
		Long: `Edit opens a terminal UI listing every feature of the catalog. Toggling a
feature applies the same cascade as "project enable" and "project disable",
and every accepted change is saved immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, func(sess *session) error {
				p, err := sess.load(ctx, args[0])
				if err != nil {
					return err
				}
				return c.runEditor(ctx, sess, p)
			})
		},
	}
}

func (c *CLI) runEditor(ctx context.Context, sess *session, p *project.Project) error {
	// The binder logs cascades at info level, which would tear the alt screen.
	b := project.NewBinder(sess.eng, p,
		project.WithSaver(sess.store),
		project.WithBinderLogger(log.New(io.Discard)))

	var accepted, rejected int
	unsubscribe := b.Subscribe(func(_ context.Context, ev project.Event) {
		if ev.Result.Rejected() {
			rejected++
			return
		}
		accepted++
	})
	defer unsubscribe()

	model := NewFeatureListModel(ctx, sess.eng, b)
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(FeatureListModel); ok && m.Err != nil {
		return m.Err
	}

	after := b.Project()
	c.Logger.Debug("editor closed", "accepted", accepted, "rejected", rejected)
	if accepted == 0 {
		printInfo("No changes to %s", after.Name)
		return nil
	}
	printSuccess("Saved %s with %d features enabled", after.Name, len(after.Features.EnabledKeys(sess.eng.Catalog())))
	return nil
}
