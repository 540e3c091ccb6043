package tui

import (
	"testing"

	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/profile"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(AppModel)
	require.True(t, ok)
	return app, cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppModel_PageFlow(t *testing.T) {
	m := NewAppModel([]profile.Record{maria, joao}, &identity.Identity{ID: "uid-1", Email: maria.Email})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, "main", m.page)
	assert.Contains(t, m.View(), "Signed in as maria@example.com")
	assert.Contains(t, m.View(), "2 users")

	_, cmd := update(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, OpenListItemMsg{}, msg)

	m, _ = update(t, m, msg)
	assert.Equal(t, "list", m.page)
	assert.Len(t, m.Profiles(), 2)

	// Details open and close without leaving the list page.
	m, _ = update(t, m, keyMsg("d"))
	assert.True(t, m.listView.viewing)
	assert.Contains(t, m.View(), maria.Phone)
	m, _ = update(t, m, keyMsg("esc"))
	assert.False(t, m.listView.viewing)
	assert.Equal(t, "list", m.page)

	m, _ = update(t, m, keyMsg("x"))
	assert.True(t, m.Profiles()[0].IsExcluded)

	_, cmd = update(t, m, keyMsg("f"))
	require.NotNil(t, cmd)
	done, ok := cmd().(DoneMsg)
	require.True(t, ok)
	assert.Len(t, done.Profiles, 2)

	m, _ = update(t, m, done)
	assert.Equal(t, "export", m.page)
	assert.Contains(t, m.View(), "export 1 user")
	assert.False(t, m.IsFinished())

	m, _ = update(t, m, BackToMainMsg{})
	assert.Equal(t, "list", m.page)
	m, _ = update(t, m, keyMsg("esc"))
	assert.Equal(t, "main", m.page)
}

func TestMainPage_EmptyCollection(t *testing.T) {
	m := NewMainPageModel(nil, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = next.(MainPageModel)

	assert.Contains(t, m.View(), "Nobody is signed in")
	assert.Contains(t, m.View(), "No users registered yet")

	_, cmd := m.Update(keyMsg("enter"))
	assert.Nil(t, cmd)
}

func TestPreviewProfiles_Truncates(t *testing.T) {
	records := make([]profile.Record, 7)
	for i := range records {
		records[i] = profile.Record{Name: "user", Email: "u@example.com"}
	}
	assert.Contains(t, previewProfiles(records), "... and 2 more users")
}
