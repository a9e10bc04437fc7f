package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/MrJamesThe3rd/spendboard/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := `{"2024-01": {"Data": [{"ItemName": "牛肉麵", "Category": "Eating Out"}]}}`
	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"ItemName": "Café"}`)...)
	assert.Equal(t, `{"ItemName": "Café"}`, readAll(t, input))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	input := []byte{0xFF, 0xFE, '{', 0, '}', 0}
	assert.Equal(t, "{}", readAll(t, input))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// Windows-1252 "Café Crème": é = 0xE9, è = 0xE8.
	input := []byte{'C', 'a', 'f', 0xE9, ' ', 'C', 'r', 0xE8, 'm', 'e', '\n'}
	assert.Equal(t, "Café Crème\n", readAll(t, input))
}

func TestNewUTF8Reader_Big5(t *testing.T) {
	text := strings.Repeat(`{"ItemName": "我們今天在這個大學上課", "Category": "他說不是中國人的"}, `, 40)

	big5, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	assert.Equal(t, text, readAll(t, big5))
}

func TestNewUTF8Reader_LongUTF8CutMidRune(t *testing.T) {
	// Pushes a three-byte rune across the sniff window boundary.
	input := strings.Repeat("a", 8191) + "麵" + strings.Repeat("b", 10)
	assert.Equal(t, input, readAll(t, []byte(input)))
}
