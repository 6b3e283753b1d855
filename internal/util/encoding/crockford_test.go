package encoding_test

import (
	"strings"
	"testing"

	"github.com/rglek0/Metadata-Editor/internal/util/encoding"
)

func TestEncodeCrockfordB32LC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "empty input",
			input: []byte{},
			want:  "",
		},
		{
			name:  "single zero byte",
			input: []byte{0x00},
			want:  "00",
		},
		{
			name:  "all ones byte",
			input: []byte{0xFF},
			want:  "zw",
		},
		{
			name:  "ascii text",
			input: []byte("hello"),
			want:  "d1jprv3f",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := encoding.EncodeCrockfordB32LC(tt.input)
			if got != tt.want {
				t.Errorf("EncodeCrockfordB32LC() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeCrockfordB32LCAlphabet(t *testing.T) {
	t.Parallel()

	// The encoded output must never contain characters outside the
	// lowercase Crockford alphabet, in particular no 'i', 'l', 'o' or 'u'.
	input := make([]byte, 256)
	for i := range input {
		input[i] = byte(i)
	}

	got := encoding.EncodeCrockfordB32LC(input)

	if strings.ContainsAny(got, "ilou") {
		t.Errorf("EncodeCrockfordB32LC() contains ambiguous characters: %q", got)
	}

	if strings.ToLower(got) != got {
		t.Errorf("EncodeCrockfordB32LC() is not lowercase: %q", got)
	}
}
