package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/i18n"
)

// InstallModeOption represents a link/copy install mode option
type InstallModeOption struct {
	Mode        config.InstallMode
	Label       string
	Description string
}

// InstallModeModel is the bubbletea model for install mode selection
type InstallModeModel struct {
	options   []InstallModeOption
	cursor    int
	selected  config.InstallMode
	quitting  bool
	confirmed bool
}

// NewInstallModeModel creates a new install mode selector model
func NewInstallModeModel(current config.InstallMode) InstallModeModel {
	options := []InstallModeOption{
		{
			Mode:        config.ModeLink,
			Label:       i18n.T("installMode.link.label", nil),
			Description: i18n.T("installMode.link.desc", nil),
		},
		{
			Mode:        config.ModeCopy,
			Label:       i18n.T("installMode.copy.label", nil),
			Description: i18n.T("installMode.copy.desc", nil),
		},
	}

	cursor := 0
	if current == config.ModeCopy {
		cursor = 1
	}

	return InstallModeModel{
		options:  options,
		cursor:   cursor,
		selected: current,
	}
}

func (m InstallModeModel) Init() tea.Cmd {
	return nil
}

func (m InstallModeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}

		case "enter", " ":
			m.selected = m.options[m.cursor].Mode
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m InstallModeModel) View() string {
	if m.quitting && !m.confirmed {
		return ""
	}

	var b strings.Builder

	b.WriteString(modeTitleStyle.Render(i18n.T("installMode.title", nil)))
	b.WriteString("\n\n")

	for i, opt := range m.options {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		if i == m.cursor {
			b.WriteString(modeSelectedStyle.Render(fmt.Sprintf("%s%s", cursor, opt.Label)))
			b.WriteString("\n")
			b.WriteString(modeDescSelectedStyle.Render(opt.Description))
		} else {
			b.WriteString(modeOptionStyle.Render(fmt.Sprintf("%s%s", cursor, opt.Label)))
			b.WriteString("\n")
			b.WriteString(modeDescStyle.Render(opt.Description))
		}
		b.WriteString("\n\n")
	}

	help := modeHelpStyle.Render("↑/↓: " + i18n.T("mode.help.move", nil) + " | Enter: " + i18n.T("mode.help.select", nil))
	b.WriteString(help)

	return modeBoxStyle.Render(b.String())
}

// RunInstallModeSelector launches the interactive link/copy selector.
// The second return value is false when the user cancelled.
func RunInstallModeSelector(current config.InstallMode) (config.InstallMode, bool, error) {
	model := NewInstallModeModel(current)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return current, false, err
	}

	m := finalModel.(InstallModeModel)
	return m.selected, m.confirmed, nil
}
