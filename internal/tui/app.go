// Package tui is a terminal front-end for one board. It renders tiers as
// rows of tiles and drives the drag engine from mouse events.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/meur/tierzen/internal/drag"
	"github.com/meur/tierzen/internal/editor"
	"github.com/meur/tierzen/internal/models"
)

// App is the bubbletea model
type App struct {
	ctx    context.Context
	ed     *editor.Editor
	width  int
	status string
}

type statusMsg string

type errMsg struct{ error }

// New creates the model for ed
func New(ctx context.Context, ed *editor.Editor) *App {
	return &App{ctx: ctx, ed: ed}
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
	case tea.KeyMsg:
		switch m.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "e":
			return a, a.toggleEditCmd()
		case "d":
			return a, a.toggleDarkCmd()
		case "esc":
			if a.ed.Cancel() {
				a.status = "Drag cancelled"
			}
		}
	case tea.MouseMsg:
		return a, a.handleMouse(m)
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "Error: " + m.Error()
	}
	return a, nil
}

func (a *App) handleMouse(m tea.MouseMsg) tea.Cmd {
	snap := a.ed.Snapshot()
	regions := Layout(snap.Board, a.width)
	p := drag.Point{X: float64(m.X), Y: float64(m.Y)}

	switch m.Action {
	case tea.MouseActionPress:
		if m.Button != tea.MouseButtonLeft || snap.Drag.Dragging() {
			return nil
		}
		id, ok := ItemAt(regions, p)
		if !ok {
			return nil
		}
		if !a.ed.BeginDrag(id) {
			a.status = "Press e to switch to rank mode before dragging"
			return nil
		}
		a.ed.Move(p, regions)
	case tea.MouseActionMotion:
		if snap.Drag.Dragging() {
			a.ed.Move(p, regions)
		}
	case tea.MouseActionRelease:
		if !snap.Drag.Dragging() {
			return nil
		}
		a.ed.Move(p, regions)
		return a.dropCmd()
	}
	return nil
}

// commands
func (a *App) dropCmd() tea.Cmd {
	return func() tea.Msg {
		outcome, err := a.ed.Drop(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg("Drop " + outcome.String())
	}
}

func (a *App) toggleEditCmd() tea.Cmd {
	editMode := !a.ed.Snapshot().Board.EditMode
	return func() tea.Msg {
		if err := a.ed.SetMode(a.ctx, editMode, nil); err != nil {
			return errMsg{err}
		}
		if editMode {
			return statusMsg("Edit mode")
		}
		return statusMsg("Rank mode")
	}
}

func (a *App) toggleDarkCmd() tea.Cmd {
	b := a.ed.Snapshot().Board
	dark := !b.DarkMode
	return func() tea.Msg {
		if err := a.ed.SetMode(a.ctx, b.EditMode, &dark); err != nil {
			return errMsg{err}
		}
		return statusMsg("Theme changed")
	}
}

// --- Rendering ---

type palette struct {
	title  lipgloss.Style
	faint  lipgloss.Style
	badge  lipgloss.Style
	tile   lipgloss.Style
	ghost  lipgloss.Style
	marker lipgloss.Style
	pool   lipgloss.Style
}

func newPalette(dark bool) palette {
	fg, border, accent := lipgloss.Color("#e6e6e6"), lipgloss.Color("#5c5c5c"), lipgloss.Color("#7aa2f7")
	if !dark {
		fg, border, accent = lipgloss.Color("#1f1f1f"), lipgloss.Color("#a0a0a0"), lipgloss.Color("#2f5fd0")
	}
	return palette{
		title:  lipgloss.NewStyle().Bold(true).Foreground(fg),
		faint:  lipgloss.NewStyle().Faint(true),
		badge:  lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#000000")).Background(accent),
		tile:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Foreground(fg).Width(tileWidth - 3),
		ghost:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Faint(true).Width(tileWidth - 3),
		marker: lipgloss.NewStyle().Foreground(accent).Bold(true),
		pool:   lipgloss.NewStyle().Foreground(fg).Bold(true),
	}
}

func (a *App) View() string {
	snap := a.ed.Snapshot()
	b := snap.Board
	pal := newPalette(b.DarkMode)

	mode := "RANK"
	if b.EditMode {
		mode = "EDIT"
	}

	var sb strings.Builder
	sb.WriteString(pal.title.Render("TierZen  "+b.Name) + "  " + pal.badge.Render(mode) + "\n")
	sb.WriteString(pal.faint.Render("e edit/rank · d theme · esc cancel drag · q quit") + "\n")

	for _, t := range b.Tiers {
		label := lipgloss.NewStyle().
			Width(labelWidth).
			Height(tileHeight).
			Align(lipgloss.Center, lipgloss.Center).
			Bold(true).
			Background(lipgloss.Color(expandHex(t.Color))).
			Foreground(lipgloss.Color(t.TextColor)).
			Render(truncate(t.Name, labelWidth-2))
		sb.WriteString(a.renderRow(pal, snap.Drag, models.CollectionID(t.ID), label, t.Items) + "\n")
	}
	pool := pal.pool.Width(labelWidth).Height(tileHeight).Align(lipgloss.Center, lipgloss.Center).Render("Unranked")
	sb.WriteString(a.renderRow(pal, snap.Drag, models.Unranked, pool, b.Unranked) + "\n")

	sb.WriteString(pal.faint.Render(a.status))
	return sb.String()
}

func (a *App) renderRow(pal palette, ds drag.State, c models.CollectionID, label string, items []models.Item) string {
	visible := items
	if n := visibleTiles(a.width); len(visible) > n {
		visible = visible[:n]
	}

	draggedID := ""
	if ds.Session != nil {
		draggedID = ds.Session.Item.ID
	}
	marker, markerAfterMore := -1, false
	if ds.Preview != nil && ds.Preview.Target == c {
		marker = markerGap(visible, draggedID, ds.Preview.Index)
		markerAfterMore = len(items) > len(visible) && ds.Preview.Index > countOthers(visible, draggedID)
		if markerAfterMore {
			marker = -1
		}
	}

	gap := func(j int) string {
		if j == marker {
			return pal.marker.Render(strings.TrimSuffix(strings.Repeat("┃\n", tileHeight), "\n"))
		}
		return lipgloss.NewStyle().Width(1).Height(tileHeight).Render("")
	}

	parts := make([]string, 0, 2*len(visible)+3)
	parts = append(parts, label)
	for j, it := range visible {
		style := pal.tile
		if it.ID == draggedID {
			style = pal.ghost
		}
		name := it.Name
		if it.HasError {
			name = "! " + name
		}
		parts = append(parts, gap(j), style.Render(truncate(name, tileWidth-3)))
	}
	parts = append(parts, gap(len(visible)))
	if hidden := len(items) - len(visible); hidden > 0 {
		parts = append(parts, pal.faint.Render(fmt.Sprintf("+%d", hidden)))
		if markerAfterMore {
			parts = append(parts, pal.marker.Render(strings.TrimSuffix(strings.Repeat("┃\n", tileHeight), "\n")))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// expandHex turns #abc into #aabbcc for terminals that only understand the
// long form
func expandHex(c string) string {
	h := strings.TrimPrefix(c, "#")
	if len(h) != 3 {
		return c
	}
	return "#" + string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
}

// Run starts the program on the terminal's alternate screen with mouse
// motion reporting
func Run(ctx context.Context, ed *editor.Editor) error {
	p := tea.NewProgram(New(ctx, ed), tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	log.Debug().Str("board_id", ed.ID()).Msg("TUI closed")
	return nil
}
