package section

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListAvailableReturnsSortedSectionsForTerm(t *testing.T) {
	store := NewInMemory()
	store.Add("2024.2", "Section 02")
	store.Add("2024.2", "Section 01")
	store.Add("2024.1", "Old Section")

	names, err := store.ListAvailable(context.Background(), "2024.2")
	require.NoError(t, err)
	require.Equal(t, []string{"Section 01", "Section 02"}, names)
}

func TestListAvailableEmptyTerm(t *testing.T) {
	store := NewInMemory()

	names, err := store.ListAvailable(context.Background(), "2025.1")
	require.NoError(t, err)
	require.Empty(t, names)
}
