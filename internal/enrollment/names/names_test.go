package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"identical", "Maria Souza", "Maria Souza", true},
		{"diacritics and case", "José Silva", "JOSE   silva", true},
		{"whitespace arrangement", "  Ana  Clara Lima ", "ana clara lima", true},
		{"cedilla and tilde", "João Gonçalves", "joao goncalves", true},
		{"different person", "José Silva", "José Silveira", false},
		{"missing middle name", "José Silva", "José da Silva", false},
		{"both empty", "", "", true},
		{"one empty", "José", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.a, tt.b))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "josesilva", Normalize("José   SILVA"))
	assert.Equal(t, "", Normalize("   "))
}
