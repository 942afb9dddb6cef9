package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddDeduplicates(t *testing.T) {
	m := NewManager()
	for i := 0; i < 5; i++ {
		m.Add("a@x.co")
		m.Add("b@x.co")
	}
	m.Add("")
	m.Add("A@x.co")

	assert.Equal(t, []string{"a@x.co", "b@x.co", "A@x.co"}, m.Emails())
}

func TestSetWorkingSet(t *testing.T) {
	m := NewManager()
	m.Add("old@x.co")

	m.SetWorkingSet([]string{"b@x.co", "a@x.co", "b@x.co"})
	assert.Equal(t, []string{"b@x.co", "a@x.co"}, m.Emails())

	m.SetWorkingSet(nil)
	assert.Empty(t, m.Emails())
}

func TestEmailsReturnsCopy(t *testing.T) {
	m := NewManager()
	m.Add("a@x.co")

	got := m.Emails()
	got[0] = "mutated"
	assert.Equal(t, []string{"a@x.co"}, m.Emails())
}

func TestRemoveAt(t *testing.T) {
	m := NewManager()
	m.SetWorkingSet([]string{"a@x.co", "b@x.co", "c@x.co"})

	m.RemoveAt(1)
	assert.Equal(t, []string{"a@x.co", "c@x.co"}, m.Emails())

	m.RemoveAt(-1)
	m.RemoveAt(2)
	assert.Equal(t, []string{"a@x.co", "c@x.co"}, m.Emails())

	m.RemoveAt(0)
	m.RemoveAt(0)
	m.RemoveAt(0)
	assert.Empty(t, m.Emails())
}

func TestCommitPendingInput(t *testing.T) {
	m := NewManager()
	m.Add("first@x.co")

	m.SetPendingInput("   ")
	assert.Equal(t, CommitEmpty, m.CommitPendingInput())
	assert.Equal(t, []string{"first@x.co"}, m.Emails())
	assert.Empty(t, m.Error())

	m.SetPendingInput("not-an-email")
	assert.Equal(t, CommitInvalid, m.CommitPendingInput())
	assert.Equal(t, []string{"first@x.co"}, m.Emails())
	assert.Equal(t, InvalidMessage, m.Error())
	assert.Equal(t, "not-an-email", m.PendingInput())

	m.SetPendingInput("a@b.co")
	assert.Equal(t, CommitAdded, m.CommitPendingInput())
	assert.Equal(t, []string{"first@x.co", "a@b.co"}, m.Emails())
	assert.Empty(t, m.Error())
	assert.Empty(t, m.PendingInput())
}

func TestCommitEmptyClearsStickyError(t *testing.T) {
	m := NewManager()
	m.SetPendingInput("bad")
	m.CommitPendingInput()
	assert.NotEmpty(t, m.Error())

	m.SetPendingInput("")
	assert.Equal(t, CommitEmpty, m.CommitPendingInput())
	assert.Empty(t, m.Error())
}

func TestToggleEntryForm(t *testing.T) {
	m := NewManager()
	m.SetError("stale")

	m.ToggleEntryForm()
	assert.True(t, m.EntryFormOpen())
	assert.Empty(t, m.Error())

	// Invalid input keeps the form open
	m.SetPendingInput("nope")
	m.ToggleEntryForm()
	assert.True(t, m.EntryFormOpen())
	assert.Equal(t, InvalidMessage, m.Error())

	// Valid input is committed and the form closes
	m.SetPendingInput("ok@x.co")
	m.ToggleEntryForm()
	assert.False(t, m.EntryFormOpen())
	assert.Equal(t, []string{"ok@x.co"}, m.Emails())

	// Empty input still closes
	m.ToggleEntryForm()
	m.ToggleEntryForm()
	assert.False(t, m.EntryFormOpen())
	assert.Equal(t, []string{"ok@x.co"}, m.Emails())
}

func TestReset(t *testing.T) {
	m := NewManager()
	m.Add("keep@x.co")
	m.ToggleEntryForm()
	m.SetPendingInput("bad")
	m.CommitPendingInput()

	m.Reset()
	assert.False(t, m.EntryFormOpen())
	assert.Empty(t, m.PendingInput())
	assert.Empty(t, m.Error())
	assert.Equal(t, []string{"keep@x.co"}, m.Emails())
}
