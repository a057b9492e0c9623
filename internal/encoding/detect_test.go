package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/fundflow/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("TRX ID,Purpose\n"))
	require.NoError(t, err)

	type testCase struct {
		name  string
		input []byte
		want  string
	}

	tests := []testCase{
		{
			name:  "UTF8Passthrough",
			input: []byte("TRX ID,Requester name\nTRX-0001,عمر\n"),
			want:  "TRX ID,Requester name\nTRX-0001,عمر\n",
		},
		{
			name:  "UTF8BOMStripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("TRX ID,Purpose\n")...),
			want:  "TRX ID,Purpose\n",
		},
		{
			name:  "UTF16LE",
			input: utf16,
			want:  "TRX ID,Purpose\n",
		},
		{
			// Windows-1252: ç = 0xE7, ã = 0xE3
			name: "Latin1",
			input: []byte{
				'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
				'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
			},
			want: "Descrição;Montante\n",
		},
		{
			name:  "Empty",
			input: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readAll(t, tt.input))
		})
	}
}

func TestNewUTF8Reader_LongInput(t *testing.T) {
	line := "TRX-0001,Expense,Operations,Request based\n"
	input := bytes.Repeat([]byte(line), 500)

	assert.Equal(t, string(input), readAll(t, input))
}
