package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrolld/pkg/platform/sentinel"
)

func TestFindByRegistrationNumber(t *testing.T) {
	store := NewInMemory(
		Course{Name: "Letras", Members: []Member{
			{RegistrationNumber: "20210011111", FullName: "Maria Souza"},
			{RegistrationNumber: "20220022222", FullName: "José Silva"},
		}},
		Course{Name: "História", Members: []Member{
			{RegistrationNumber: "20230033333", FullName: "Ana Lima"},
		}},
	)

	t.Run("matches member and projects course", func(t *testing.T) {
		student, err := store.FindByRegistrationNumber(context.Background(), "20230033333")
		require.NoError(t, err)
		assert.Equal(t, "Ana Lima", student.FullName)
		assert.Equal(t, "História", student.CourseName)
	})

	t.Run("unknown number", func(t *testing.T) {
		_, err := store.FindByRegistrationNumber(context.Background(), "19990000000")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
