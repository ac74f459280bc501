package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/i18n"
)

// ModeOption represents an auto-update mode option
type ModeOption struct {
	Mode        config.AutoUpdateMode
	Label       string
	Description string
}

// Animation tick message
type animTickMsg time.Time

// ModeSelectorModel is the bubbletea model for mode selection
type ModeSelectorModel struct {
	options   []ModeOption
	cursor    int
	selected  config.AutoUpdateMode
	width     int
	height    int
	quitting  bool
	confirmed bool
	animFrame int // Current animation frame
}

// Mode selector styles
var (
	modeTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	modeOptionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	modeSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Bold(true).
				Padding(0, 1)

	modeDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			MarginLeft(4)

	modeDescSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				MarginLeft(4)

	modeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	modeHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	previewBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Foreground(lipgloss.Color("250"))

	previewTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Bold(true)
)

// NewModeSelectorModel creates a new mode selector model
func NewModeSelectorModel() ModeSelectorModel {
	options := []ModeOption{
		{
			Mode:        config.AutoUpdateNotify,
			Label:       i18n.T("mode.notify.label", nil),
			Description: i18n.T("mode.notify.desc", nil),
		},
		{
			Mode:        config.AutoUpdateAuto,
			Label:       i18n.T("mode.auto.label", nil),
			Description: i18n.T("mode.auto.desc", nil),
		},
	}

	return ModeSelectorModel{
		options:  options,
		cursor:   0, // Default to notify
		selected: config.AutoUpdateNotify,
	}
}

func (m ModeSelectorModel) Init() tea.Cmd {
	return tickAnimation()
}

func tickAnimation() tea.Cmd {
	return tea.Tick(time.Millisecond*300, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

func (m ModeSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case animTickMsg:
		m.animFrame++
		return m, tickAnimation()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.animFrame = 0 // Reset animation on mode change
			}

		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
				m.animFrame = 0
			}

		case "enter", " ":
			m.selected = m.options[m.cursor].Mode
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit

		case "esc":
			// Select notify as default and exit
			m.selected = config.AutoUpdateNotify
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m ModeSelectorModel) View() string {
	if m.quitting && !m.confirmed {
		return ""
	}

	var left strings.Builder

	title := modeTitleStyle.Render(i18n.T("mode.title", nil))
	left.WriteString(title)
	left.WriteString("\n\n")

	for i, opt := range m.options {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		var labelLine string
		var descLine string

		if i == m.cursor {
			labelLine = modeSelectedStyle.Render(fmt.Sprintf("%s%s", cursor, opt.Label))
			descLine = modeDescSelectedStyle.Render(opt.Description)
		} else {
			labelLine = modeOptionStyle.Render(fmt.Sprintf("%s%s", cursor, opt.Label))
			descLine = modeDescStyle.Render(opt.Description)
		}

		left.WriteString(labelLine)
		left.WriteString("\n")
		left.WriteString(descLine)
		left.WriteString("\n\n")
	}

	help := modeHelpStyle.Render("↑/↓: " + i18n.T("mode.help.move", nil) + " | Enter: " + i18n.T("mode.help.select", nil))
	left.WriteString(help)

	preview := m.renderAnimatedPreview()

	leftBox := modeBoxStyle.Render(left.String())

	rightBoxStyle := previewBoxStyle.Width(48).Height(14)
	rightBox := rightBoxStyle.Render(preview)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftBox, "  ", rightBox)
}

// Session UI that appears at the end of the preview animation
const sessionUI = `┌─────────────────────────────────────────┐
│ >_ claude (v2.x)                        │
│                                         │
│ cwd: ~/my-project                       │
└─────────────────────────────────────────┘
> _`

// Animation frames for notify mode
var notifyFrames = []string{
	"$ p_",
	"$ pl_",
	"$ plu_",
	"$ plug_",
	"$ plugfarm_",
	"$ plugfarm",
	"$ plugfarm\n\nChecking for updates...",
	"$ plugfarm\n\nChecking for updates...",
	"$ plugfarm\n\nChecking for updates...\n\nUpdates available:\n  [Marketplace] my-market abc1234 → def5678\n  [Plugin] my-plugin v1.0 → v1.1\n\nUpdate now? [Y/n] _",
	"$ plugfarm\n\nChecking for updates...\n\nUpdates available:\n  [Marketplace] my-market abc1234 → def5678\n  [Plugin] my-plugin v1.0 → v1.1\n\nUpdate now? [Y/n] _",
	"$ plugfarm\n\nChecking for updates...\n\nUpdates available:\n  [Marketplace] my-market abc1234 → def5678\n  [Plugin] my-plugin v1.0 → v1.1\n\nUpdate now? [Y/n] Y",
	"$ plugfarm\n\nChecking for updates...\n\nUpdates available:\n  [Marketplace] my-market abc1234 → def5678\n  [Plugin] my-plugin v1.0 → v1.1\n\nUpdate now? [Y/n] Y\n\nUpdating...",
	"$ plugfarm\n\nChecking for updates...\n\nUpdates available:\n  [Marketplace] my-market abc1234 → def5678\n  [Plugin] my-plugin v1.0 → v1.1\n\nUpdate now? [Y/n] Y\n\nUpdating...\n  ⠋ my-market",
	"$ plugfarm\n\nChecking for updates...\n\nUpdates available:\n  [Marketplace] my-market abc1234 → def5678\n  [Plugin] my-plugin v1.0 → v1.1\n\nUpdate now? [Y/n] Y\n\nUpdating...\n  ⠙ my-market",
	"$ plugfarm\n\nChecking for updates...\n\nUpdates available:\n  [Marketplace] my-market abc1234 → def5678\n  [Plugin] my-plugin v1.0 → v1.1\n\nUpdate now? [Y/n] Y\n\nUpdating...\n  ✓ my-market\n  ⠋ my-plugin",
	"$ plugfarm\n\nChecking for updates...\n\nUpdates available:\n  [Marketplace] my-market abc1234 → def5678\n  [Plugin] my-plugin v1.0 → v1.1\n\nUpdate now? [Y/n] Y\n\nUpdating...\n  ✓ my-market\n  ⠙ my-plugin",
	"$ plugfarm\n\nChecking for updates...\n\nUpdates available:\n  [Marketplace] my-market abc1234 → def5678\n  [Plugin] my-plugin v1.0 → v1.1\n\nUpdate now? [Y/n] Y\n\nUpdating...\n  ✓ my-market\n  ✓ my-plugin",
	sessionUI,
	sessionUI,
	sessionUI,
}

// Animation frames for auto mode
var autoFrames = []string{
	"$ p_",
	"$ pl_",
	"$ plu_",
	"$ plug_",
	"$ plugfarm_",
	"$ plugfarm",
	"$ plugfarm\n\nChecking for updates...",
	"$ plugfarm\n\nChecking for updates...",
	"$ plugfarm\n\nChecking for updates...\n\nUpdating...",
	"$ plugfarm\n\nChecking for updates...\n\nUpdating...\n  ⠋ my-market",
	"$ plugfarm\n\nChecking for updates...\n\nUpdating...\n  ⠙ my-market",
	"$ plugfarm\n\nChecking for updates...\n\nUpdating...\n  ✓ my-market\n  ⠋ my-plugin",
	"$ plugfarm\n\nChecking for updates...\n\nUpdating...\n  ✓ my-market\n  ⠙ my-plugin",
	"$ plugfarm\n\nChecking for updates...\n\nUpdating...\n  ✓ my-market\n  ✓ my-plugin",
	sessionUI,
	sessionUI,
	sessionUI,
}

// renderAnimatedPreview returns the animated preview for current mode
func (m ModeSelectorModel) renderAnimatedPreview() string {
	var b strings.Builder

	b.WriteString(previewTitleStyle.Render("Preview:"))
	b.WriteString("\n\n")

	currentMode := m.options[m.cursor].Mode
	var frames []string

	switch currentMode {
	case config.AutoUpdateNotify:
		frames = notifyFrames
	case config.AutoUpdateAuto:
		frames = autoFrames
	default:
		return b.String()
	}

	// Loop animation with a short pause on the last frame
	totalFrames := len(frames) + 2
	frameIdx := m.animFrame % totalFrames
	if frameIdx >= len(frames) {
		frameIdx = len(frames) - 1
	}

	frame := frames[frameIdx]
	styledFrame := m.stylePreviewFrame(frame)
	b.WriteString(styledFrame)

	return b.String()
}

// stylePreviewFrame applies colors to preview text
func (m ModeSelectorModel) stylePreviewFrame(frame string) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	greenStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	yellowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	cyanStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	result := frame

	// Typing cursor
	result = strings.ReplaceAll(result, "$ p_", dimStyle.Render("$ ")+"p"+greenStyle.Render("_"))
	result = strings.ReplaceAll(result, "$ pl_", dimStyle.Render("$ ")+"pl"+greenStyle.Render("_"))
	result = strings.ReplaceAll(result, "$ plu_", dimStyle.Render("$ ")+"plu"+greenStyle.Render("_"))
	result = strings.ReplaceAll(result, "$ plug_", dimStyle.Render("$ ")+"plug"+greenStyle.Render("_"))
	result = strings.ReplaceAll(result, "$ plugfarm_", dimStyle.Render("$ ")+"plugfarm"+greenStyle.Render("_"))
	result = strings.ReplaceAll(result, "$ plugfarm", dimStyle.Render("$ ")+"plugfarm")

	// Status messages
	result = strings.ReplaceAll(result, "Checking for updates...", yellowStyle.Render("Checking for updates..."))
	result = strings.ReplaceAll(result, "Updating...", yellowStyle.Render("Updating..."))

	// Version info
	result = strings.ReplaceAll(result, "abc1234", dimStyle.Render("abc1234"))
	result = strings.ReplaceAll(result, "def5678", greenStyle.Render("def5678"))
	result = strings.ReplaceAll(result, "v1.0", dimStyle.Render("v1.0"))
	result = strings.ReplaceAll(result, "v1.1", greenStyle.Render("v1.1"))

	// Spinners and checkmarks
	result = strings.ReplaceAll(result, "⠋", yellowStyle.Render("⠋"))
	result = strings.ReplaceAll(result, "⠙", yellowStyle.Render("⠙"))
	result = strings.ReplaceAll(result, "✓", greenStyle.Render("✓"))

	// Prompt
	result = strings.ReplaceAll(result, "[Y/n]", greenStyle.Render("[Y/n]"))

	result = strings.ReplaceAll(result, ">_ claude", cyanStyle.Render(">_ claude"))
	result = strings.ReplaceAll(result, "> _", greenStyle.Render("> _"))

	return result
}

// GetSelected returns the selected mode
func (m ModeSelectorModel) GetSelected() config.AutoUpdateMode {
	return m.selected
}

// IsConfirmed returns whether the user confirmed selection
func (m ModeSelectorModel) IsConfirmed() bool {
	return m.confirmed
}

// RunModeSelector launches the interactive auto-update mode selector
func RunModeSelector() (config.AutoUpdateMode, bool, error) {
	model := NewModeSelectorModel()
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return config.AutoUpdateNotify, false, err
	}

	m := finalModel.(ModeSelectorModel)
	return m.GetSelected(), m.IsConfirmed(), nil
}
