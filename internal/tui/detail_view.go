package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brizzai/auth-profile/internal/profile"
	"github.com/charmbracelet/lipgloss"
)

// renderDetail shows every stored field of a record.
func renderDetail(rec profile.Record) string {
	rows := [][2]string{
		{"Name", rec.Name},
		{"Email", rec.Email},
		{"Age", rec.Age},
		{"Phone", rec.Phone},
		{"Identity", rec.IdentityID},
		{"Document", rec.DocumentID},
	}
	if !rec.CreatedAt.IsZero() {
		rows = append(rows, [2]string{"Created", rec.CreatedAt.Local().Format(time.DateTime)})
	}

	keys := make([]string, 0, len(rec.Extra))
	for k := range rec.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, [2]string{k, fmt.Sprint(rec.Extra[k])})
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, detailLabelStyle.Render(r[0]), r[1]))
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n",
		detailHeaderStyle.Render(rec.Name),
		strings.Join(lines, "\n"),
		"(esc to go back)",
	)
}
