package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUserHashesPassword(t *testing.T) {
	user, err := NewUser("alice", "alice@example.com", "longenough1", "Alice", "Mokoena")
	assert.NoError(t, err)

	assert.NotEqual(t, "longenough1", user.Password)
	assert.True(t, user.CheckPassword("longenough1"))
	assert.False(t, user.CheckPassword("wrong"))
	assert.Equal(t, RoleLead, user.Role)
}

func TestNewUserRejectsShortPassword(t *testing.T) {
	_, err := NewUser("alice", "alice@example.com", "short", "", "")
	assert.Error(t, err)
}

func TestNewUserRequiresUsernameAndEmail(t *testing.T) {
	_, err := NewUser("", "alice@example.com", "longenough1", "", "")
	assert.Error(t, err)

	_, err = NewUser("alice", "", "longenough1", "", "")
	assert.Error(t, err)
}
