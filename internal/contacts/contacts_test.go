package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/addressbook/internal/contact"
)

func sample() []contact.Contact {
	return []contact.Contact{
		{ID: "3", Name: "Zoe Park", Email: "zoe@x.co", Emails: []string{"zoe@x.co"}},
		{ID: "1", Name: "Adam Reed", Email: "adam@work.co", Emails: []string{"adam@work.co", "ar@home.co"}},
		{ID: "2", Name: "Mia Lund"},
	}
}

func TestSetContactsKeepsServerOrder(t *testing.T) {
	l := NewList()
	l.SetContacts(sample())

	var ids []string
	for _, c := range l.Contacts() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids)
	assert.Equal(t, 3, l.Len())
}

func TestSelectNotifiesObserver(t *testing.T) {
	l := NewList()
	l.SetContacts(sample())

	var got []*contact.Contact
	l.SetObserver(SelectionFunc(func(ct *contact.Contact) { got = append(got, ct) }))

	l.Select("1")
	id, ok := l.SelectedID()
	assert.True(t, ok)
	assert.Equal(t, "1", id)

	l.Select("missing")
	require.Len(t, got, 2)
	require.NotNil(t, got[0])
	assert.Equal(t, "Adam Reed", got[0].Name)
	assert.Nil(t, got[1])

	id, ok = l.SelectedID()
	assert.True(t, ok)
	assert.Equal(t, "missing", id)
}

func TestSetContactsDoesNotTouchSelection(t *testing.T) {
	l := NewList()
	l.SetContacts(sample())
	l.Select("2")

	l.SetContacts(sample()[:1])
	id, ok := l.SelectedID()
	assert.True(t, ok)
	assert.Equal(t, "2", id)
	assert.Nil(t, l.ByID("2"))
}

func TestClearSelection(t *testing.T) {
	l := NewList()
	l.Select("x")
	l.ClearSelection()

	_, ok := l.SelectedID()
	assert.False(t, ok)
}

func TestByIDReturnsCopy(t *testing.T) {
	l := NewList()
	l.SetContacts(sample())

	ct := l.ByID("3")
	require.NotNil(t, ct)
	ct.Name = "changed"
	assert.Equal(t, "Zoe Park", l.ByID("3").Name)
	assert.Nil(t, l.ByID(""))
	assert.Equal(t, 1, l.IndexOf("1"))
	assert.Equal(t, -1, l.IndexOf("9"))
}

func TestFilter(t *testing.T) {
	l := NewList()
	l.SetContacts(sample())

	assert.Len(t, l.Filter(""), 3)

	got := l.Filter("HOME")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got = l.Filter("a")
	var ids []string
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids)

	assert.Empty(t, l.Filter("nobody"))
}
