package extract

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromText(t *testing.T) {
	t.Run("finds token embedded in report text", func(t *testing.T) {
		text := "Resultado individual\nChave: zDdMdIblbpDr/DxLOPgr6w== emitida em 2024"
		token, err := FromText(text)
		require.NoError(t, err)
		assert.Equal(t, "zDdMdIblbpDr/DxLOPgr6w==", token)
	})

	t.Run("returns first match when several candidates exist", func(t *testing.T) {
		text := "aaa/111== and bbb/222=="
		token, err := FromText(text)
		require.NoError(t, err)
		assert.Equal(t, "aaa/111==", token)
	})

	t.Run("no base64-like substring", func(t *testing.T) {
		_, err := FromText("plain report text without any key")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("single padding char is not a token", func(t *testing.T) {
		_, err := FromText("almost a token: YWJj=")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := FromText("")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestFromPDFUnreadable(t *testing.T) {
	junk := []byte("not a pdf at all")
	_, err := FromPDF(bytes.NewReader(junk), int64(len(junk)))
	assert.ErrorIs(t, err, ErrUnreadable)
}
