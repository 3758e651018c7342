package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModels(t *testing.T) {
	t.Run("Post TableName", func(t *testing.T) {
		assert.Equal(t, "posts", Post{}.TableName())
	})

	t.Run("Follow TableName", func(t *testing.T) {
		assert.Equal(t, "follows", Follow{}.TableName())
	})

	t.Run("Post length limit matches column size", func(t *testing.T) {
		assert.Equal(t, 140, MaxPostLength)
	})
}
