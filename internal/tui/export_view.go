package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brizzai/auth-profile/internal/profile"
	"github.com/brizzai/auth-profile/internal/tui/models"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"
)

// ProfileExport is the document written by ExportProfilesToYamlFile.
type ProfileExport struct {
	ExportedAt time.Time        `yaml:"exported_at"`
	Users      []profile.Record `yaml:"users"`
}

// ExportView handles prompting for a filename and exporting profiles
type ExportView struct {
	profiles     []*models.ProfileItem
	textInput    textinput.Model
	err          error
	width        int
	height       int
	exportStatus string
	Success      bool
	Filename     string
}

// NewExportView creates a new export view
func NewExportView(profiles []*models.ProfileItem) ExportView {
	ti := textinput.New()
	ti.Placeholder = "users.yaml"
	ti.Focus()
	ti.Width = 40

	return ExportView{
		profiles:  profiles,
		textInput: ti,
	}
}

func (m ExportView) Init() tea.Cmd {
	return textinput.Blink
}

func (m ExportView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg { return BackToMainMsg{} }
		case "enter":
			if m.textInput.Value() == "" {
				m.exportStatus = "Please enter a filename"
				return m, nil
			}

			filename := yamlFilename(m.textInput.Value())
			if err := ExportProfilesToYamlFile(m.profiles, filename); err != nil {
				m.err = err
				m.exportStatus = fmt.Sprintf("Error exporting: %v", err)
				return m, nil
			}

			m.Success = true
			m.Filename = filename
			m.exportStatus = completeMessageStyle(fmt.Sprintf("Exported %s to %s", pluralize(countIncluded(m.profiles), "user"), filename))
			return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tea.Quit()
			})
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m ExportView) View() string {
	var sb strings.Builder

	verticalPadding := (m.height - 6) / 2
	for i := 0; i < verticalPadding; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(centerText(titleStyle.Render("Export Users"), m.width))
	sb.WriteString("\n\n")

	prompt := fmt.Sprintf("Enter filename to export %s:", pluralize(countIncluded(m.profiles), "user"))
	sb.WriteString(centerText(prompt, m.width))
	sb.WriteString("\n")

	sb.WriteString(centerText(m.textInput.View(), m.width))
	sb.WriteString("\n\n")

	if m.exportStatus != "" {
		sb.WriteString(centerText(m.exportStatus, m.width))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(centerText("(esc) Back to list | (enter) Export", m.width))

	return sb.String()
}

// BackToMainMsg signals to go back to the users list
type BackToMainMsg struct{}

func yamlFilename(name string) string {
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return name
	}
	return name + ".yaml"
}

func countIncluded(items []*models.ProfileItem) int {
	n := 0
	for _, it := range items {
		if !it.IsExcluded {
			n++
		}
	}
	return n
}

// ExportProfilesToYamlFile writes every item not marked as excluded to filename.
func ExportProfilesToYamlFile(items []*models.ProfileItem, filename string) error {
	export := ProfileExport{
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Users:      []profile.Record{},
	}
	for _, it := range items {
		if it.IsExcluded {
			continue
		}
		export.Users = append(export.Users, it.Record)
	}

	data, err := yaml.Marshal(export)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filename, data, 0o600)
}

// centerText pads text so it sits in the middle of width
func centerText(text string, width int) string {
	if width <= len(text) {
		return text
	}

	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}
