// Package explore implements a Bubble Tea model for interactively browsing a
// solved strategy.Tree node by node.
package explore

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/riversolver/strategy"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	selStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	paneStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#626262")).Padding(0, 1)
)

var actionOrder = []byte{'c', 'r', 'f'}

var actionName = map[byte]string{
	'c': "check/call",
	'r': "raise",
	'f': "fold",
}

// Model is the Bubble Tea model for the tree explorer: current node, the
// path of actions taken to reach it, and the sibling action list at the
// current node for cursor navigation.
type Model struct {
	tree    *strategy.Tree
	node    *strategy.Node
	path    []byte
	actions []byte
	cursor  int
	quit    bool
}

// New returns a Model positioned at tree's root.
func New(tree *strategy.Tree) *Model {
	m := &Model{tree: tree, node: tree.Root}
	m.refreshActions()
	return m
}

func (m *Model) refreshActions() {
	m.actions = m.actions[:0]
	for _, a := range actionOrder {
		if _, ok := m.node.Children[a]; ok {
			m.actions = append(m.actions, a)
		}
	}
	sort.Slice(m.actions, func(i, j int) bool { return m.actions[i] < m.actions[j] })
	if m.cursor >= len(m.actions) {
		m.cursor = 0
	}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "q", "esc":
		m.quit = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.actions)-1 {
			m.cursor++
		}
	case "enter", "right", "l":
		if len(m.actions) > 0 {
			action := m.actions[m.cursor]
			m.node = m.node.Children[action]
			m.path = append(m.path, action)
			m.cursor = 0
			m.refreshActions()
		}
	case "backspace", "left", "h":
		if len(m.path) > 0 {
			m.path = m.path[:len(m.path)-1]
			m.node = walk(m.tree, m.path)
			m.cursor = 0
			m.refreshActions()
		}
	}
	return m, nil
}

func walk(tree *strategy.Tree, path []byte) *strategy.Node {
	n := tree.Root
	for _, a := range path {
		n = n.Children[a]
	}
	return n
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("river solver tree explorer"))
	b.WriteString("\n")
	if len(m.path) == 0 {
		b.WriteString(pathStyle.Render("path: (root)"))
	} else {
		b.WriteString(pathStyle.Render("path: " + string(m.path)))
	}
	b.WriteString("\n\n")

	info := fmt.Sprintf("pot: %.4f    hands in range: %d", m.node.PotSize, m.node.Range.Len())
	b.WriteString(info)
	b.WriteString("\n\n")

	if len(m.actions) == 0 {
		b.WriteString(dimStyle.Render("(terminal node, no further actions)"))
	} else {
		for i, a := range m.actions {
			line := fmt.Sprintf("%s (%c)", actionName[a], a)
			if i == m.cursor {
				b.WriteString(selStyle.Render("> " + line))
			} else {
				b.WriteString(dimStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(pathStyle.Render("up/down select, enter descend, backspace ascend, q quit"))

	return paneStyle.Render(b.String())
}
