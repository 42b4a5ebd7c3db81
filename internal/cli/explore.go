package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/marchallab/netview/pkg/highlight"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/pipeline"
	"github.com/marchallab/netview/pkg/view"
)

// exploreFPS is the tick rate of the explorer's layout.
const exploreFPS = 30

// Explorer styles
var (
	exploreCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreActiveStyle = lipgloss.NewStyle().Foreground(colorWhite)
	exploreDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	exploreInfoStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// exploreCommand creates the explore command, a terminal viewer of one
// network.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		in   inputFlags
		opts pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "explore [network.json]",
		Short: "Browse a network and its highlights in the terminal",
		Long: `Browse a network and its highlights in the terminal.

The layout runs live while genes are browsed. Moving the cursor hovers a gene,
enter clicks it (hover is paused for the click cooldown) and the info panel
shows what the highlight covers.

Keys:
  ↑/↓ j/k   move between genes
  enter     click the gene under the cursor
  m         cycle highlight mode (paths, component, neighbors)
  g         cycle gene set highlights
  c         clear the highlight
  u         release pinned nodes
  q         quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.apply(&opts, args[0])
			return c.runExplore(cmd.Context(), opts)
		},
	}

	in.register(cmd)
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for initial positions (default from config)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "initial highlight mode")
	withModeCompletion(cmd)

	return cmd
}

// runExplore loads the network and runs the explorer until the user quits or
// ctx is cancelled.
func (c *CLI) runExplore(ctx context.Context, opts pipeline.Options) error {
	c.setCLIDefaults(&opts)
	mode, err := highlight.ParseMode(opts.Mode)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	_, m, _, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load network %s: %w", opts.Network, err)
	}

	v := view.New(m, view.Options{
		Seed:     opts.Seed,
		Mode:     mode,
		Cooldown: c.Config.Server.Cooldown.Duration,
	})
	defer v.Close()

	p := tea.NewProgram(newExploreModel(v), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// =============================================================================
// ExploreModel - Interactive network browser
// =============================================================================

// exploreTickMsg advances the layout by one frame.
type exploreTickMsg time.Time

// ExploreModel is the bubbletea model of the explorer.
type ExploreModel struct {
	Viewer *view.Viewer
	Frame  view.Frame

	Cursor int
	Offset int
	Height int

	// GeneSet is the index into the model's gene sets of the active gene
	// set highlight, or -1.
	GeneSet int

	Status   string
	Quitting bool
}

// newExploreModel creates an explorer over v with its first frame.
func newExploreModel(v *view.Viewer) ExploreModel {
	return ExploreModel{
		Viewer:  v,
		Frame:   v.Frame(),
		Height:  15,
		GeneSet: -1,
	}
}

func exploreTick() tea.Cmd {
	return tea.Tick(time.Second/exploreFPS, func(t time.Time) tea.Msg {
		return exploreTickMsg(t)
	})
}

func (m ExploreModel) Init() tea.Cmd {
	return exploreTick()
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exploreTickMsg:
		m.Viewer.Tick()
		m.Frame = m.Viewer.Frame()
		return m, exploreTick()
	case tea.KeyMsg:
		m = m.handleKey(msg.String())
		if m.Quitting {
			return m, tea.Quit
		}
		m.Frame = m.Viewer.Frame()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

// handleKey applies one key press.
func (m ExploreModel) handleKey(key string) ExploreModel {
	model := m.Viewer.Model()
	m.Status = ""

	switch key {
	case "q", "ctrl+c", "esc":
		m.Quitting = true
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
			m.hover()
		}
	case "down", "j":
		if m.Cursor < len(model.Nodes)-1 {
			m.Cursor++
			if m.Cursor >= m.Offset+m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
			m.hover()
		}
	case "enter":
		if id, ok := m.current(); ok {
			if _, err := m.Viewer.Click(highlight.NodeTarget(id)); err != nil {
				m.Status = err.Error()
			}
			m.GeneSet = -1
		}
	case "m":
		mode := nextMode(m.Viewer.Highlight().State().Mode)
		m.Viewer.SetMode(mode)
		m.Status = "mode: " + string(mode)
	case "g":
		sets := model.GeneSets()
		if len(sets) == 0 {
			m.Status = "no gene sets loaded"
			break
		}
		m.GeneSet = (m.GeneSet + 1) % len(sets)
		if err := m.Viewer.HighlightGeneSet(sets[m.GeneSet]); err != nil {
			m.Status = err.Error()
		}
	case "c":
		m.Viewer.ClearHighlight()
		m.GeneSet = -1
	case "u":
		m.Viewer.Unfreeze()
		m.Status = "released pinned nodes"
	}
	return m
}

// hover focuses the node under the cursor. Hover is ignored during a click
// cooldown.
func (m *ExploreModel) hover() {
	if id, ok := m.current(); ok {
		m.Viewer.Focus(highlight.NodeTarget(id))
	}
}

func (m ExploreModel) current() (string, bool) {
	nodes := m.Viewer.Model().Nodes
	if m.Cursor < 0 || m.Cursor >= len(nodes) {
		return "", false
	}
	return nodes[m.Cursor].ID, true
}

// nextMode returns the mode after cur in menu order.
func nextMode(cur highlight.Mode) highlight.Mode {
	for i, mode := range highlight.Modes {
		if mode == cur {
			return highlight.Modes[(i+1)%len(highlight.Modes)]
		}
	}
	return highlight.DefaultMode
}

func (m ExploreModel) View() string {
	var b strings.Builder
	model := m.Viewer.Model()

	b.WriteString(StyleTitle.Render("Network Explorer"))
	b.WriteString("\n")
	b.WriteString(exploreDimStyle.Render("↑/↓ navigate  ⏎ click  m mode  g gene set  c clear  u unfreeze  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(model.Nodes))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		rows = append(rows, m.row(model, i))
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Gene", "Group", "In", "Out", "Position", "Opacity").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx == m.Cursor {
				return exploreCursorStyle
			}
			if idx < len(m.Frame.Nodes) && m.Frame.Nodes[idx].Opacity > network.OpacityDimmed {
				return exploreActiveStyle
			}
			return exploreDimStyle
		})

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, t.Render(), " ", m.infoPanel()))
	b.WriteString("\n")

	state := "running"
	if m.Viewer.Settled() {
		state = "settled"
	}
	b.WriteString(exploreDimStyle.Render(fmt.Sprintf("  [%d/%d]  mode %s  tick %d  alpha %.3f  %s",
		m.Cursor+1, len(model.Nodes), m.Viewer.Highlight().State().Mode, m.Frame.Ticks, m.Frame.Alpha, state)))
	if m.Status != "" {
		b.WriteString("\n  " + StyleWarning.Render(m.Status))
	}
	return b.String()
}

func (m ExploreModel) row(model *network.Model, i int) []string {
	n := model.Nodes[i]
	cursor := "  "
	if i == m.Cursor {
		cursor = "▸ "
	}
	pos, opacity := "—", "—"
	if i < len(m.Frame.Nodes) {
		p := m.Frame.Nodes[i]
		pos = fmt.Sprintf("%.0f,%.0f", p.X, p.Y)
		if p.Pinned {
			pos += " ⊙"
		}
		opacity = fmt.Sprintf("%.2f", p.Opacity)
	}
	return []string{
		cursor,
		n.ID,
		fmt.Sprintf("%d", n.Group),
		fmt.Sprintf("%d", model.InDegree(i)),
		fmt.Sprintf("%d", model.OutDegree(i)),
		pos,
		opacity,
	}
}

// infoPanel renders the frame's information panel.
func (m ExploreModel) infoPanel() string {
	var b strings.Builder
	title := ""
	var lines []string
	if m.Frame.Info != nil {
		title, lines = m.Frame.Info.Title, m.Frame.Info.Lines
	}
	b.WriteString(StyleHighlight.Render(title))
	for _, line := range lines {
		b.WriteString("\n" + line)
	}
	return exploreInfoStyle.Width(48).Render(b.String())
}
