package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anhlt/micropyc"
	"github.com/anhlt/micropyc/ir"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	declStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserState int

const (
	stateSelectModule browserState = iota
	stateViewSource
)

type moduleEntry struct {
	name    string
	summary string
	source  string
}

type browserModel struct {
	err      error
	filename string
	set      *ir.DeclSet
	cfg      micropyc.Config

	modules  []moduleEntry
	selected int
	state    browserState
	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

type compiledMsg struct {
	err     error
	modules []moduleEntry
}

func newBrowserModel(filename string, set *ir.DeclSet, cfg micropyc.Config) *browserModel {
	return &browserModel{
		filename: filename,
		set:      set,
		cfg:      cfg,
		state:    stateSelectModule,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return m.compileAll
}

// compileAll assembles every module in memory so the browser can show
// the generated source without touching the output directory.
func (m *browserModel) compileAll() tea.Msg {
	cfg := m.cfg
	cfg.OutputDir = ""
	res, err := micropyc.Compile(m.set, cfg)
	if err != nil {
		return compiledMsg{err: err}
	}

	var entries []moduleEntry
	for i, gm := range res.Modules {
		decl := m.set.Modules[i]
		entries = append(entries, moduleEntry{
			name: gm.Name,
			summary: fmt.Sprintf("%d functions, %d classes, %d externs",
				len(decl.Functions), len(decl.Classes), len(decl.Externs)),
			source: gm.Source,
		})
	}
	return compiledMsg{modules: entries}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectModule && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectModule && m.selected < len(m.modules)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateSelectModule && len(m.modules) > 0 {
				m.viewport.SetContent(m.modules[m.selected].source)
				m.viewport.GotoTop()
				m.state = stateViewSource
			}

		case "esc":
			if m.state == stateViewSource {
				m.state = stateSelectModule
			}
		}

	case compiledMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.modules = msg.modules
	}

	if m.state == stateViewSource {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if len(m.modules) == 0 {
		return "Compiling declarations..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("micropyc"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectModule:
		b.WriteString("Select a module to inspect:\n\n")
		for i, e := range m.modules {
			line := declStyle.Render(e.name) + "  " + typeStyle.Render(e.summary)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + e.name))
				b.WriteString("  " + typeStyle.Render(e.summary))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter view source • q quit"))

	case stateViewSource:
		e := m.modules[m.selected]
		b.WriteString(declStyle.Render(e.name+".c") + "\n")
		if m.ready {
			b.WriteString(m.viewport.View())
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func runInteractive(filename string, set *ir.DeclSet, cfg micropyc.Config) error {
	p := tea.NewProgram(newBrowserModel(filename, set, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
