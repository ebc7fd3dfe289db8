// Package tui provides a terminal user interface for midi2mml
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.design/x/clipboard"

	"github.com/mabimml/midi2mml/pkg/converter"
	"github.com/mabimml/midi2mml/pkg/settings"
)

// Bardic color scheme (parchment and lute strings)
var (
	gold      = lipgloss.Color("#FFD700")
	parchment = lipgloss.Color("#E8DCC4")
	forest    = lipgloss.Color("#228B22")
	darkBrown = lipgloss.Color("#3B2F2F")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(gold).
			Background(darkBrown).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(parchment).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(gold).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(forest).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(forest).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(gold).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateConverting
	StateResult
)

// menu rows; the setting rows edit in place rather than changing state
const (
	menuConvert = iota
	menuMode
	menuCharLimit
	menuCompress
	menuSort
	menuExit
	menuCount
)

// charLimitSteps are the values the char limit row cycles through
var charLimitSteps = []int{600, 900, 1200, 2400, 4800}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	prefs        settings.Settings
	selectedFile string
	result       converter.ConversionResult
	voiceIndex   int
	copied       string
	clipboardOK  bool
	err          error
	width        int
	height       int
}

// conversionDoneMsg signals conversion completion
type conversionDoneMsg struct {
	result converter.ConversionResult
	err    error
}

// New creates a new TUI model
func New() Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(gold)

	prefs, err := settings.Load()
	if err != nil {
		prefs = settings.Default()
	}

	return Model{
		state:       StateMenu,
		menuIndex:   0,
		filePicker:  fp,
		spinner:     s,
		prefs:       prefs,
		clipboardOK: clipboard.Init() == nil,
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateConverting
			return m, tea.Batch(m.spinner.Tick, m.performConversion())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case conversionDoneMsg:
		m.state = StateResult
		m.result = msg.result
		m.voiceIndex = 0
		m.copied = ""
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < menuCount-1 {
			m.menuIndex++
		}
	case "enter", "right", "l", " ":
		return m.activateMenuRow()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) activateMenuRow() (tea.Model, tea.Cmd) {
	switch m.menuIndex {
	case menuConvert:
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case menuMode:
		if m.prefs.Mode == converter.ModeNormal {
			m.prefs.Mode = converter.ModeInstrument
		} else {
			m.prefs.Mode = converter.ModeNormal
		}
	case menuCharLimit:
		m.prefs.CharLimit = nextCharLimit(m.prefs.CharLimit)
	case menuCompress:
		m.prefs.Compress = !m.prefs.Compress
	case menuSort:
		m.prefs.SortBy = nextSort(m.prefs.SortBy)
	case menuExit:
		return m, tea.Quit
	}
	_ = settings.Save(m.prefs)
	return m, nil
}

func nextCharLimit(current int) int {
	for i, step := range charLimitSteps {
		if step == current {
			return charLimitSteps[(i+1)%len(charLimitSteps)]
		}
	}
	return charLimitSteps[0]
}

func nextSort(current converter.SortBy) converter.SortBy {
	switch current {
	case converter.SortDefault:
		return converter.SortName
	case converter.SortName:
		return converter.SortInstrument
	default:
		return converter.SortDefault
	}
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.voiceIndex > 0 {
			m.voiceIndex--
		}
	case "down", "j":
		if m.voiceIndex < len(m.result.Voices)-1 {
			m.voiceIndex++
		}
	case "c":
		if m.clipboardOK && m.voiceIndex < len(m.result.Voices) {
			v := m.result.Voices[m.voiceIndex]
			clipboard.Write(clipboard.FmtText, []byte(v.Content))
			m.copied = v.Name
		}
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.result = converter.ConversionResult{}
		m.copied = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performConversion() tea.Cmd {
	path := m.selectedFile
	opts := m.prefs.Options()
	sortBy := m.prefs.SortBy
	return func() tea.Msg {
		result, err := converter.New().ConvertFile(path, opts)
		if err != nil {
			return conversionDoneMsg{err: err}
		}
		if !result.Success {
			return conversionDoneMsg{err: fmt.Errorf("%s", result.Error)}
		}
		result.Voices = converter.SortVoices(result.Voices, sortBy)
		return conversionDoneMsg{result: result}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) menuRows() []string {
	return []string{
		"Convert MIDI file",
		fmt.Sprintf("Mode: %s", m.prefs.Mode),
		fmt.Sprintf("Char limit: %d", m.prefs.CharLimit),
		fmt.Sprintf("Compress: %s", onOff(m.prefs.Compress)),
		fmt.Sprintf("Sort: %s", m.prefs.SortBy),
		"Exit",
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" MIDI TO MML "))
	s.WriteString("\n\n")

	for i, row := range m.menuRows() {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", row)))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", row)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CONVERTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Converting %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  mode: %s", m.prefs.Mode)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Conversion failed: %s", m.err.Error())))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("Press enter to continue"))
		return boxStyle.Render(s.String())
	}

	s.WriteString(titleStyle.Render(" VOICES "))
	s.WriteString("\n\n")
	s.WriteString(successStyle.Render(fmt.Sprintf("✓ %s", filepath.Base(m.selectedFile))))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("  %d BPM, %d notes read\n\n", m.result.BPM, m.result.TotalNotes))

	if len(m.result.Voices) == 0 {
		s.WriteString(menuStyle.Render("No playable notes found"))
	}
	for i, v := range m.result.Voices {
		line := fmt.Sprintf("%s  %d chars, %d notes, %.1fs", v.Name, v.CharCount, v.NoteCount, v.Duration)
		if i == m.voiceIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", line)))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", line)))
		}
		s.WriteString("\n")
	}

	if m.copied != "" {
		s.WriteString(statusStyle.Render(fmt.Sprintf("Copied %s to clipboard", m.copied)))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	if m.clipboardOK {
		s.WriteString(helpStyle.Render("c: copy voice • enter: back to menu"))
	} else {
		s.WriteString(helpStyle.Render("enter: back to menu"))
	}

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   __  __ ___ ____ ___ ____  __  __ __  __ _
  |  \/  |_ _|  _ \_ _|___ \|  \/  |  \/  | |
  | |\/| || || | | | |  __) | |\/| | |\/| | |
  | |  | || || |_| | | / __/| |  | | |  | | |___
  |_|  |_|___|____/___|_____|_|  |_|_|  |_|_____|
`
	return lipgloss.NewStyle().Foreground(gold).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
