package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/notify"
)

// fakeSource implements identity.ChangeSource for testing
type fakeSource struct {
	hub *notify.Hub[*identity.Identity]

	mu            sync.Mutex
	subscriptions int
}

func newFakeSource() *fakeSource {
	return &fakeSource{hub: notify.NewHub[*identity.Identity]("fake")}
}

func (f *fakeSource) OnChange(fn identity.ChangeFunc) func() {
	f.mu.Lock()
	f.subscriptions++
	f.mu.Unlock()
	return f.hub.Subscribe(fn)
}

func (f *fakeSource) emit(id *identity.Identity) {
	f.hub.Publish(id)
	f.hub.Wait()
}

type transitions struct {
	mu  sync.Mutex
	got []*identity.Identity
}

func (tr *transitions) record(id *identity.Identity) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.got = append(tr.got, id)
}

func (tr *transitions) all() []*identity.Identity {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]*identity.Identity(nil), tr.got...)
}

var maria = &identity.Identity{ID: "uid-1", Email: "maria@example.com", DisplayName: "Maria"}

func TestStore_EmptyBeforeFirstNotification(t *testing.T) {
	s := NewStore(newFakeSource())
	s.Start()
	defer s.Close()

	assert.Nil(t, s.Current())
	assert.Equal(t, Anonymous, s.State())
}

func TestStore_TracksProviderTransitions(t *testing.T) {
	src := newFakeSource()
	s := NewStore(src)
	s.Start()
	defer s.Close()

	rec := &transitions{}
	s.OnChange(rec.record)

	src.emit(maria)
	s.Wait()
	require.NotNil(t, s.Current())
	assert.Empty(t, cmp.Diff(maria, s.Current()))
	assert.Equal(t, Authenticated, s.State())

	renamed := &identity.Identity{ID: "uid-1", Email: "maria@example.com", DisplayName: "Maria S."}
	src.emit(renamed)
	src.emit(nil)
	s.Wait()

	assert.Nil(t, s.Current())
	assert.Equal(t, Anonymous, s.State())

	got := rec.all()
	require.Len(t, got, 3)
	assert.Empty(t, cmp.Diff(maria, got[0]))
	assert.Empty(t, cmp.Diff(renamed, got[1]))
	assert.Nil(t, got[2])
}

func TestStore_RepeatedIdentityIsANormalUpdate(t *testing.T) {
	src := newFakeSource()
	s := NewStore(src)
	s.Start()
	defer s.Close()

	rec := &transitions{}
	s.OnChange(rec.record)

	src.emit(maria)
	src.emit(maria)
	s.Wait()

	assert.Len(t, rec.all(), 2)
	assert.Empty(t, cmp.Diff(maria, s.Current()))
}

func TestStore_MultipleSubscribersAndIdempotentUnsubscribe(t *testing.T) {
	src := newFakeSource()
	s := NewStore(src)
	s.Start()
	defer s.Close()

	a, b := &transitions{}, &transitions{}
	unsubA := s.OnChange(a.record)
	s.OnChange(b.record)

	src.emit(maria)
	s.Wait()

	unsubA()
	unsubA()

	src.emit(nil)
	s.Wait()

	assert.Len(t, a.all(), 1)
	assert.Len(t, b.all(), 2)
}

func TestStore_CurrentReturnsACopy(t *testing.T) {
	src := newFakeSource()
	s := NewStore(src)
	s.Start()
	defer s.Close()

	src.emit(maria)
	s.Wait()

	c := s.Current()
	c.DisplayName = "changed"
	assert.Equal(t, "Maria", s.Current().DisplayName)
}

func TestStore_StartIsIdempotentAndStopDetaches(t *testing.T) {
	src := newFakeSource()
	s := NewStore(src)
	s.Start()
	s.Start()
	assert.Equal(t, 1, src.subscriptions)

	s.Stop()
	src.emit(maria)
	s.Wait()
	assert.Nil(t, s.Current())

	s.Start()
	assert.Equal(t, 2, src.subscriptions)
	src.emit(maria)
	assert.Eventually(t, func() bool { return s.Current() != nil }, time.Second, 5*time.Millisecond)
	s.Close()
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "authenticated", Authenticated.String())
}
