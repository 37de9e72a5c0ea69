package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldErrors(t *testing.T) {
	t.Run("should be nil when empty", func(t *testing.T) {
		fe := FieldErrors{}

		assert.False(t, fe.HasErrors())
		assert.NoError(t, fe.Err())
	})

	t.Run("should accumulate messages per field", func(t *testing.T) {
		fe := FieldErrors{}
		fe.Add("title", "required")
		fe.Add("title", "too long")
		fe.Merge(FieldErrors{"user": {"invalid"}})

		assert.Equal(t, []string{"required", "too long"}, fe["title"])
		assert.Equal(t, []string{"invalid"}, fe["user"])
		assert.Equal(t, "validation failed: title: required, too long; user: invalid", fe.Error())
	})

	t.Run("should be found through wrapping", func(t *testing.T) {
		err := fmt.Errorf("create task: %w", FieldErrors{"datetime": {"invalid"}}.Err())

		fe, ok := IsFieldErrors(err)

		assert.True(t, ok)
		assert.Contains(t, fe, "datetime")
	})

	t.Run("should not match other errors", func(t *testing.T) {
		_, ok := IsFieldErrors(errors.New("boom"))

		assert.False(t, ok)
	})
}
