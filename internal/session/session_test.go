package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	items  map[string]string
	setErr error
}

func newMemStore() *memStore {
	return &memStore{items: map[string]string{}}
}

func (m *memStore) GetSecret(key string) (string, error) {
	v, ok := m.items[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (m *memStore) SetSecret(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.items[key] = value
	return nil
}

func (m *memStore) DeleteSecret(key string) error {
	delete(m.items, key)
	return nil
}

func TestBeginPersistsToken(t *testing.T) {
	store := newMemStore()
	s := New("prod", store)

	require.NoError(t, s.Begin("abc"))
	assert.True(t, s.Active())
	assert.Equal(t, "abc", s.Token())
	assert.Equal(t, "abc", store.items["token:prod"])

	_, ok := s.User()
	assert.False(t, ok)
	s.SetUser(User{ID: 7, Username: "gm"})
	u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "gm", u.Username)
}

func TestBeginRejectsEmptyToken(t *testing.T) {
	s := New("prod", nil)
	assert.Error(t, s.Begin(""))
	assert.False(t, s.Active())
}

func TestBeginReportsStoreFailure(t *testing.T) {
	store := newMemStore()
	store.setErr = errors.New("locked")
	s := New("prod", store)
	assert.ErrorContains(t, s.Begin("abc"), "locked")
	assert.True(t, s.Active(), "token is still usable for this run")
}

func TestRestore(t *testing.T) {
	store := newMemStore()
	assert.ErrorIs(t, New("prod", store).Restore(), ErrNoToken)
	assert.ErrorIs(t, New("prod", nil).Restore(), ErrNoToken)

	store.items["token:prod"] = "saved"
	s := New("prod", store)
	require.NoError(t, s.Restore())
	assert.Equal(t, "saved", s.Token())

	other := New("dev", store)
	assert.ErrorIs(t, other.Restore(), ErrNoToken)
}

func TestEndClearsEverything(t *testing.T) {
	store := newMemStore()
	s := New("prod", store)
	require.NoError(t, s.Begin("abc"))
	s.SetUser(User{ID: 1, Username: "gm"})

	require.NoError(t, s.End())
	assert.False(t, s.Active())
	_, ok := s.User()
	assert.False(t, ok)
	assert.NotContains(t, store.items, "token:prod")
}
