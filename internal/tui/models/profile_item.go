package models

import (
	"fmt"
	"strings"

	"github.com/brizzai/auth-profile/internal/profile"
	"github.com/charmbracelet/lipgloss"
)

// ProfileItem wraps a profile record for display in the list
// Implements list.Item
type ProfileItem struct {
	Record     profile.Record
	IsExcluded bool
}

func (i ProfileItem) Title() string {
	if i.Record.Name == "" {
		return i.Record.Email
	}
	return i.Record.Name
}

func (i ProfileItem) Description() string {
	if i.IsExcluded {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Render("[Excluded]")
	}
	parts := []string{i.Record.Email}
	if i.Record.Age != "" {
		parts = append(parts, "age "+i.Record.Age)
	}
	if i.Record.Phone != "" {
		parts = append(parts, i.Record.Phone)
	}
	return strings.Join(parts, " · ")
}

func (i ProfileItem) ToggleExcluded() ProfileItem {
	i.IsExcluded = !i.IsExcluded
	return i
}

func (i ProfileItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.Record.Name, i.Record.Email, i.Record.Phone)
}
