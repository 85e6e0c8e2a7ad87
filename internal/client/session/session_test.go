package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	events []string
}

func (r *recordingListener) SessionStarted(sess *Session) {
	r.events = append(r.events, "start:"+sess.UserHandle)
}

func (r *recordingListener) SessionEnded(sess *Session) {
	r.events = append(r.events, "end:"+sess.UserHandle)
}

func TestLogin_EmptyHandle(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Login("   ")
	require.True(t, errors.Is(err, ErrEmptyHandle))
	assert.Nil(t, s.Current())
}

func TestLoginLogout(t *testing.T) {
	s := NewStore(nil)
	l := &recordingListener{}
	s.Subscribe(l)

	sess, err := s.Login(" a@x.com ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sess.UserHandle)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, sess.Active())
	assert.True(t, s.IsCurrent(sess))
	assert.Same(t, sess, s.Current())

	s.Logout()
	assert.False(t, sess.Active())
	assert.Error(t, sess.Context().Err())
	assert.False(t, s.IsCurrent(sess))
	assert.Nil(t, s.Current())

	assert.Equal(t, []string{"start:a@x.com", "end:a@x.com"}, l.events)
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	s := NewStore(nil)
	l := &recordingListener{}
	s.Subscribe(l)

	first, err := s.Login("a@x.com")
	require.NoError(t, err)
	second, err := s.Login("b@x.com")
	require.NoError(t, err)

	assert.False(t, first.Active())
	assert.True(t, second.Active())
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []string{"start:a@x.com", "end:a@x.com", "start:b@x.com"}, l.events)
}

func TestLogout_Anonymous(t *testing.T) {
	s := NewStore(nil)
	l := &recordingListener{}
	s.Subscribe(l)

	s.Logout()
	assert.Empty(t, l.events)
}

func TestIsCurrent_Nil(t *testing.T) {
	var sess *Session
	assert.False(t, sess.Active())
	assert.False(t, NewStore(nil).IsCurrent(nil))
}
