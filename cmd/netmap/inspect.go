package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netmap/pkg/filter"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

// inspectCmd prints the degree table, or the detail panel of one topic.
func inspectCmd() *cobra.Command {
	var (
		label  string
		focus  string
		sortBy string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print node degrees and details",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, io.Discard)
			if err != nil {
				return err
			}
			defer closeLog()

			loader, err := newLoader(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			bundle, err := loader.Load(cmd.Context())
			if err != nil {
				return err
			}
			enc, err := graph.NewEncoder(cfg.Encoding)
			if err != nil {
				return err
			}
			model, err := graph.Build(bundle, enc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if label != "" {
				id, ok := model.Lookup(label)
				if !ok {
					return fmt.Errorf("no topic %q", label)
				}
				d, _ := model.Details(id)
				fmt.Fprintln(out, renderDetails(d, 60))
				return nil
			}

			if focus != "" {
				palette, err := filter.PaletteFromConfig(cfg.Encoding)
				if err != nil {
					return err
				}
				if _, err := filter.Apply(model, focus, palette); err != nil {
					return err
				}
			}

			fmt.Fprintln(out, degreeTable(model, sortBy, limit))
			stats := model.Stats()
			fmt.Fprintf(out, "%d topics, %d links, max in %d, max out %d\n",
				model.NodeCount(), stats.Edges, stats.MaxIn, stats.MaxOut)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&label, "label", "", "show the detail panel for this topic")
	f.StringVar(&focus, "focus", "", "only list this topic and its neighbours")
	f.StringVar(&sortBy, "sort", "label", "sort by label, in or out")
	f.IntVar(&limit, "limit", 0, "show at most this many rows")
	return cmd
}

func degreeTable(m *graph.Model, sortBy string, limit int) string {
	var nodes []graph.Node
	for _, n := range m.Nodes() {
		if !n.Hidden {
			nodes = append(nodes, n)
		}
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		switch sortBy {
		case "in":
			return a.InDegree > b.InDegree
		case "out":
			return a.OutDegree > b.OutDegree
		default:
			return a.Label < b.Label
		}
	})
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}

	width := 12
	rows := make([]table.Row, 0, len(nodes))
	for _, n := range nodes {
		width = max(width, lipgloss.Width(n.Label))
		rows = append(rows, table.Row{
			strconv.Itoa(int(n.ID)),
			n.Label,
			strconv.Itoa(n.InDegree),
			strconv.Itoa(n.OutDegree),
			n.Color.Hex(),
		})
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Topic", Width: min(width, 48)},
			{Title: "In", Width: 4},
			{Title: "Out", Width: 4},
			{Title: "Color", Width: 8},
		}),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return t.View()
}

// renderDetails formats the detail panel. Classification values are drawn
// heavier the higher they rank.
func renderDetails(d graph.NodeDetails, width int) string {
	var b strings.Builder

	b.WriteString(panelTitleStyle.Render(d.Label))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Incoming links: %d\n", d.InDegree)
	fmt.Fprintf(&b, "Outgoing links: %d\n\n", d.OutDegree)

	periods := []string{"Short term", "Medium term", "Long term"}
	for i, c := range d.Classification {
		fmt.Fprintf(&b, "%-12s %s\n", periods[i]+":", rankStyle(c).Render(c))
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(width).Render(d.Description))
	for i, long := range d.LongDescriptions {
		if long == "" || long == graph.Placeholder {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(subtleStyle.Render(periods[i]))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Render(long))
	}
	if d.MissingData {
		b.WriteString("\n\n")
		b.WriteString(subtleStyle.Render("some attributes are missing for this topic"))
	}
	return b.String()
}

func rankStyle(c string) lipgloss.Style {
	switch graph.ClassificationRank(c) {
	case 3:
		return lipgloss.NewStyle().Bold(true)
	case 2:
		return lipgloss.NewStyle()
	case 1:
		return lipgloss.NewStyle().Faint(true)
	default:
		return subtleStyle
	}
}
