package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/orgchart/pkg/engine"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/orgio"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorYellow)
)

type editMode int

const (
	modeBrowse editMode = iota
	modeAddChild
	modeAddRoot
)

// editorRow is one line of the flattened tree.
type editorRow struct {
	node  *orgchart.Node
	depth int
}

// EditorModel is the bubbletea model of `orgchart edit`. Every change is
// sent to the engine as a chart event.
type EditorModel struct {
	engine *engine.Engine
	name   string
	save   func(orgio.Definition) error

	rows   []editorRow
	Cursor int
	Offset int
	Height int

	mode   editMode
	input  string
	moving string // id of the node picked up with x

	Status string
	Dirty  bool
	Saved  bool
}

// NewEditorModel creates an editor over e's chart. save persists the
// chart as a definition named name.
func NewEditorModel(e *engine.Engine, name string, save func(orgio.Definition) error) EditorModel {
	m := EditorModel{engine: e, name: name, save: save, Height: 20}
	m.refresh()
	return m
}

func (m *EditorModel) refresh() {
	m.rows = make([]editorRow, 0, len(m.rows))
	var walk func(n *orgchart.Node, depth int)
	walk = func(n *orgchart.Node, depth int) {
		m.rows = append(m.rows, editorRow{node: n, depth: depth})
		for _, k := range n.Children() {
			walk(k, depth+1)
		}
	}
	for _, r := range m.engine.Chart().Roots() {
		walk(r, 0)
	}
	m.Cursor = max(0, min(m.Cursor, len(m.rows)-1))
	m.scroll()
}

func (m *EditorModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// current returns the node under the cursor, or nil for an empty chart.
func (m EditorModel) current() *orgchart.Node {
	if len(m.rows) == 0 {
		return nil
	}
	return m.rows[m.Cursor].node
}

func (m *EditorModel) selectID(id string) {
	for i, r := range m.rows {
		if r.node.ID() == id {
			m.Cursor = i
			m.scroll()
			return
		}
	}
}

// apply sends ev to the engine and refreshes the tree.
func (m *EditorModel) apply(ev engine.Event, ok string) []*orgchart.Node {
	nodes, err := m.engine.Apply(ev)
	if err != nil {
		m.Status = StyleError.Render(iconError + " " + errors.UserMessage(err))
		return nil
	}
	m.Dirty, m.Saved = true, false
	m.Status = StyleSuccess.Render(iconSuccess + " " + ok)
	m.refresh()
	return nodes
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-8)
		m.scroll()
	}
	return m, nil
}

func (m EditorModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur := m.current()
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			m.scroll()
		}
	case "down", "j":
		if m.Cursor < len(m.rows)-1 {
			m.Cursor++
			m.scroll()
		}
	case "a":
		if cur != nil {
			m.mode, m.input, m.Status = modeAddChild, "", ""
		}
	case "A":
		m.mode, m.input, m.Status = modeAddRoot, "", ""
	case "d":
		if cur != nil {
			m.apply(engine.Event{Type: engine.EventRemoveNode, NodeID: cur.ID()}, "removed "+nodeLabel(cur))
		}
	case "h":
		if cur != nil {
			verb := "hid "
			if !cur.Visible() {
				verb = "showed "
			}
			m.apply(engine.Event{Type: engine.EventSetVisible, NodeID: cur.ID(), Visible: !cur.Visible()}, verb+nodeLabel(cur))
		}
	case "x":
		if cur != nil {
			m.moving = cur.ID()
			m.Status = "moving " + nodeLabel(cur) + ": select the new parent and press p"
		}
	case "p":
		if cur != nil && m.moving != "" {
			id := m.moving
			m.moving = ""
			m.apply(engine.Event{Type: engine.EventReparentNode, NodeID: id, ParentID: cur.ID()}, "moved under "+nodeLabel(cur))
			m.selectID(id)
		}
	case "s":
		def := orgio.FromSnapshot(m.name, m.engine.Chart().Snapshot())
		if err := m.save(def); err != nil {
			m.Status = StyleError.Render(iconError + " " + errors.UserMessage(err))
			break
		}
		m.Dirty, m.Saved = false, true
		m.Status = StyleSuccess.Render(fmt.Sprintf("%s saved %d nodes", iconSuccess, def.Count()))
	}
	return m, nil
}

func (m EditorModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.mode, m.input = modeBrowse, ""
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input)
		mode := m.mode
		m.mode, m.input = modeBrowse, ""
		if name == "" {
			break
		}
		ev := engine.Event{Type: engine.EventAppendRoots, Specs: []orgchart.NodeSpec{{Name: name}}}
		if mode == modeAddChild {
			ev.Type = engine.EventAppendChildren
			ev.NodeID = m.current().ID()
		}
		if nodes := m.apply(ev, "added "+name); len(nodes) == 1 {
			m.selectID(nodes[0].ID())
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := m.name
	if m.Dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  a add child  A add root  d delete  h hide/show  x move  p paste  s save  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  empty chart, press A to add a root"))
		b.WriteString("\n")
	}
	end := min(len(m.rows), m.Offset+m.Height)
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.rowView(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeAddChild:
		b.WriteString(fmt.Sprintf("New child of %s: %s▏", nodeLabel(m.current()), m.input))
	case modeAddRoot:
		b.WriteString(fmt.Sprintf("New root: %s▏", m.input))
	default:
		b.WriteString(m.Status)
	}
	b.WriteString("\n")
	return b.String()
}

func (m EditorModel) rowView(i int) string {
	r := m.rows[i]
	cursor := "  "
	if i == m.Cursor {
		cursor = "▸ "
	}
	line := cursor + strings.Repeat("  ", r.depth) + nodeLabel(r.node)
	meta := fmt.Sprintf("  %s (%.0f, %.0f)", r.node.ID(), r.node.X(), r.node.Y())
	if !r.node.Visible() {
		meta += " hidden"
	}

	style := listNormalStyle
	switch {
	case r.node.ID() == m.moving:
		style = listMarkedStyle
	case i == m.Cursor:
		style = listSelectedStyle
	case !r.node.Visible():
		style = listDimStyle
	}
	return style.Render(line) + listDimStyle.Render(meta)
}

func nodeLabel(n *orgchart.Node) string {
	if n == nil {
		return ""
	}
	if n.Name() != "" {
		return n.Name()
	}
	return n.ID()
}
