package decrypt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/subcrack/internal/freq"
	"github.com/verte-zerg/subcrack/internal/mapping"
)

func TestDecrypt(t *testing.T) {
	type args struct {
		ciphertext string
		m          mapping.Mapping
		overrides  []mapping.Mapping
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "case preserved",
			args: args{
				ciphertext: "Xiq",
				m:          mapping.Mapping{'x': 't', 'i': 'h', 'q': 'e'},
			},
			want: "The",
		},
		{
			name: "unmapped placeholder",
			args: args{
				ciphertext: "ab, Cd!",
				m:          mapping.Mapping{'a': 'x'},
			},
			want: "x?, ??!",
		},
		{
			name: "override wins",
			args: args{
				ciphertext: "cat",
				m:          mapping.Mapping{'c': 'a', 'a': 'b', 't': 'c'},
				overrides:  []mapping.Mapping{{'c': 'z'}},
			},
			want: "zbc",
		},
		{
			name: "later override wins",
			args: args{
				ciphertext: "C",
				m:          mapping.Mapping{},
				overrides:  []mapping.Mapping{{'c': 'y'}, {'c': 'z'}},
			},
			want: "Z",
		},
		{
			name: "non letters untouched",
			args: args{
				ciphertext: "1 2\t3-ü",
				m:          mapping.Mapping{},
			},
			want: "1 2\t3-ü",
		},
		{
			name: "invalid utf-8 bytes kept",
			args: args{
				ciphertext: "a\xffb",
				m:          mapping.Mapping{'a': 'x', 'b': 'y'},
			},
			want: "x\xffy",
		},
		{
			name: "empty",
			args: args{ciphertext: "", m: mapping.Mapping{'a': 'b'}},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decrypt(tt.args.ciphertext, tt.args.m, tt.args.overrides...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecryptUppercaseMapped(t *testing.T) {
	// The placeholder has no case; only mapped letters carry it over.
	got := Decrypt("Ab", mapping.Mapping{'a': 'x'})
	assert.Equal(t, "X?", got)
}

func TestDecryptIsPure(t *testing.T) {
	base := mapping.Mapping{'a': 'b', 'c': 'd'}
	override := mapping.Mapping{'a': 'z'}
	text := "Abc, cab!"

	first := Decrypt(text, base, override)
	second := Decrypt(text, base, override)
	require.Equal(t, first, second)
	assert.Equal(t, mapping.Mapping{'a': 'b', 'c': 'd'}, base)
	assert.Equal(t, mapping.Mapping{'a': 'z'}, override)
}

func TestDecryptPreservesLayout(t *testing.T) {
	text := "Hello, World! 123 -- The End."
	m, _ := mapping.Build(freq.Analyze(text).Percent, freq.English())
	got := Decrypt(text, m)

	gotRunes := []rune(got)
	textRunes := []rune(text)
	require.Len(t, gotRunes, len(textRunes))
	for i, r := range textRunes {
		switch {
		case !freq.IsLetter(r):
			assert.Equal(t, r, gotRunes[i], "position %d", i)
		case freq.IsUpper(r):
			assert.True(t, freq.IsUpper(gotRunes[i]) || gotRunes[i] == Placeholder, "position %d", i)
		default:
			assert.False(t, freq.IsUpper(gotRunes[i]), "position %d", i)
		}
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := mapping.Mapping{}
	plain := "abcdefghijklmnopqrstuvwxyz"
	shifted := "defghijklmnopqrstuvwxyzabc"
	for i, r := range plain {
		key[r] = rune(shifted[i])
	}
	msg := "Meet me at the Old Mill, 9pm."
	enc := Encrypt(msg, key)
	assert.NotEqual(t, msg, enc)
	assert.Equal(t, msg, Decrypt(enc, key.Invert()))
	assert.False(t, strings.ContainsRune(enc, Placeholder))
}
