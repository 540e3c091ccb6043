package tui

import (
	"fmt"
	"strings"

	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/profile"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxPreviewProfiles = 5

// MainPageKeyMap holds key bindings for the main page actions
type MainPageKeyMap struct {
	open key.Binding
	quit key.Binding
}

func newMainPageKeyMap() *MainPageKeyMap {
	return &MainPageKeyMap{
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Browse Users"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c/q", "Quit"),
		),
	}
}

// MainPageModel represents the landing page of the users browser
type MainPageModel struct {
	keys    *MainPageKeyMap
	width   int
	height  int
	records []profile.Record
	current *identity.Identity
}

// OpenListItemMsg is sent when the user chooses to open the users list
type OpenListItemMsg struct{}

// NewMainPageModel creates a new main page model
func NewMainPageModel(records []profile.Record, current *identity.Identity) MainPageModel {
	return MainPageModel{
		keys:    newMainPageKeyMap(),
		records: records,
		current: current,
	}
}

func (m MainPageModel) Init() tea.Cmd {
	return nil
}

func (m MainPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.open):
			if len(m.records) == 0 {
				return m, nil
			}
			return m, func() tea.Msg { return OpenListItemMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m MainPageModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render("Registered Users")

	descStyle := lipgloss.NewStyle().
		Padding(1, 0).
		Width(m.width - 4).
		Align(lipgloss.Center)

	signedIn := "Nobody is signed in."
	if m.current != nil {
		signedIn = "Signed in as " + m.current.Email + "."
	}
	description := descStyle.Render(
		signedIn + "\n" +
			"Browse the stored profiles, inspect their fields and export a selection to YAML.\n\n" +
			"There are " + pluralize(len(m.records), "user") + " in the users collection.",
	)

	previewStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#f56a96")).
		Padding(1, 1).
		Width(m.width - 10).
		Align(lipgloss.Left)

	preview := previewStyle.Render(previewProfiles(m.records))

	instructionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f56a96")).
		Padding(1, 0).
		Width(m.width - 4).
		Align(lipgloss.Center)

	instructionText := "Press ENTER to browse users"
	if len(m.records) == 0 {
		instructionText = "No users registered yet"
	}
	instruction := instructionStyle.Render(instructionText)

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#626262", Dark: "#A49FA5"}).
		Width(m.width - 4).
		Align(lipgloss.Center)

	help := helpStyle.Render("Press q or Ctrl+C to quit")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		title,
		"",
		description,
		"",
		preview,
		"",
		instruction,
		"",
		help,
	)

	return docStyle.Render(content)
}

func previewProfiles(records []profile.Record) string {
	var sb strings.Builder
	shown := min(len(records), maxPreviewProfiles)
	for _, rec := range records[:shown] {
		sb.WriteString(fmt.Sprintf("%s <%s>\n", rec.Name, rec.Email))
	}
	if len(records) > maxPreviewProfiles {
		sb.WriteString(fmt.Sprintf("\n... and %d more users", len(records)-maxPreviewProfiles))
	}
	return sb.String()
}

// pluralize returns the count followed by the noun, pluralized when needed
func pluralize(count int, singular string) string {
	if count == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %ss", count, singular)
}
