package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"first and last", User{FirstName: "Ivan", LastName: "Petrov", Email: "i@x.io"}, "Ivan Petrov"},
		{"first only", User{FirstName: "Ivan", Email: "i@x.io"}, "Ivan"},
		{"last only falls back to email", User{LastName: "Petrov", Email: "i@x.io"}, "i@x.io"},
		{"blank names", User{FirstName: "  ", Email: "i@x.io"}, "i@x.io"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.FullName())
		})
	}
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("Anna Maria  Smith")
	assert.Equal(t, "Anna", first)
	assert.Equal(t, "Maria  Smith", last)

	first, last = SplitName("  Anna  ")
	assert.Equal(t, "Anna", first)
	assert.Equal(t, "", last)

	first, last = SplitName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}

func TestPostType(t *testing.T) {
	assert.True(t, PostTypeQuestion.Valid())
	assert.False(t, PostType(3).Valid())
	assert.False(t, PostTypeQuestion.IsNote())
	assert.True(t, PostTypePositive.IsNote())
	assert.True(t, PostTypeNegative.IsNote())
}

func TestGenderValid(t *testing.T) {
	assert.True(t, GenderUnknown.Valid())
	assert.False(t, Gender("X").Valid())
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(NewNotFoundError("Post", 1), CodeNotFound))
	assert.False(t, IsCode(NewValidationError("bad"), CodeNotFound))
	assert.False(t, IsCode(nil, CodeNotFound))
}
