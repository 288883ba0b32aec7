package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stackforge/pkg/engine"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/project"
	"github.com/matzehuels/stackforge/pkg/resolver"
	"github.com/matzehuels/stackforge/pkg/target"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FeatureListModel - Interactive feature selection for one project
// =============================================================================

// FeatureListModel is the bubbletea model behind "stackforge edit". Every
// toggle goes through the binder, so the list always shows a valid state.
type FeatureListModel struct {
	ctx    context.Context
	eng    *engine.Engine
	binder *project.Binder

	Features    []feature.Info
	Project     *project.Project
	Unsupported feature.Set
	Cursor      int
	Height      int
	Offset      int
	Message     string
	Err         error
}

// NewFeatureListModel creates a model for the project bound to b.
func NewFeatureListModel(ctx context.Context, eng *engine.Engine, b *project.Binder) FeatureListModel {
	m := FeatureListModel{
		ctx:      ctx,
		eng:      eng,
		binder:   b,
		Features: eng.Catalog().Infos(),
		Height:   15,
	}
	m.refresh()
	return m
}

// refresh reloads the project snapshot and the support set.
func (m *FeatureListModel) refresh() {
	m.Project = m.binder.Project()
	keys, err := m.eng.UnsupportedFeatures(m.Project.Language, m.Project.Framework)
	if err != nil {
		m.Err = err
		return
	}
	m.Unsupported = feature.NewSet(keys...)
}

func (m FeatureListModel) Init() tea.Cmd {
	return nil
}

func (m FeatureListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Features)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "enter", "x":
			key := m.Features[m.Cursor].Key
			m.apply(resolver.Toggle{Feature: key, On: !m.Project.Features.Enabled(key)})
		case "f":
			m.apply(resolver.ChangeFramework{Framework: m.nextFramework()})
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 9
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// apply runs one mutation and records its outcome for the status line.
func (m *FeatureListModel) apply(mut resolver.Mutation) {
	res, err := m.binder.Apply(m.ctx, mut)
	if err != nil {
		m.Err = err
		return
	}
	m.Err = nil
	switch {
	case res.Rejected():
		m.Message = StyleError.Render(res.Rejection.String())
	case res.Summary() != "":
		m.Message = StyleSuccess.Render(mut.String()) + StyleDim.Render(" · "+res.Summary())
	default:
		m.Message = StyleSuccess.Render(mut.String())
	}
	m.refresh()
}

// nextFramework cycles through the frameworks of the project's language.
func (m FeatureListModel) nextFramework() target.Framework {
	fws := m.eng.Targets().Frameworks(m.Project.Language)
	i := slices.Index(fws, m.Project.Framework)
	return fws[(i+1)%len(fws)]
}

// hint describes what toggling the feature under the cursor would do.
func (m FeatureListModel) hint() string {
	key := m.Features[m.Cursor].Key
	if m.Project.Features.Enabled(key) {
		var off []feature.Key
		for _, k := range m.eng.Graph().AllDependentsOf(key) {
			if m.Project.Features.Enabled(k) {
				off = append(off, k)
			}
		}
		if len(off) == 0 {
			return ""
		}
		return "disabling also turns off " + joinKeys(off, "")
	}
	forced, blocking, err := m.eng.Resolver().Preview(m.Project.Input(), key)
	if err != nil {
		return err.Error()
	}
	if len(blocking) > 0 {
		return "not available on " + string(m.Project.Framework) + ": " + joinKeys(blocking, "")
	}
	if len(forced) > 0 {
		return "enabling also turns on " + joinKeys(forced, "")
	}
	return ""
}

func (m FeatureListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Project.Name))
	b.WriteString("  ")
	b.WriteString(StyleValue.Render(targetLabel(m.eng, m.Project.Language, m.Project.Framework)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ toggle  f next framework  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Features) {
		end = len(m.Features)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		info := m.Features[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			onOffIcon(m.Project.Features.Enabled(info.Key)),
			info.Label,
			info.Category,
			joinKeys(m.eng.Graph().DependenciesOf(info.Key), "—"),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Feature", "Category", "Requires").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Features) {
				return lipgloss.NewStyle()
			}
			key := m.Features[actualIdx].Key
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if isCurrent {
				base = base.Bold(true)
			}
			switch {
			case m.Unsupported.Has(key):
				return base.Foreground(colorDim)
			case m.Project.Features.Enabled(key):
				return base.Foreground(colorGreen)
			case isCurrent:
				return base.Foreground(colorCyan)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d enabled", m.Cursor+1, len(m.Features), len(m.Project.Features.EnabledKeys(m.eng.Catalog())))))
	b.WriteString("\n")

	if h := m.hint(); h != "" {
		b.WriteString("  " + StyleDim.Render(h) + "\n")
	}
	switch {
	case m.Err != nil:
		b.WriteString("  " + StyleError.Render(m.Err.Error()) + "\n")
	case m.Message != "":
		b.WriteString("  " + m.Message + "\n")
	}

	return b.String()
}
