package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := NewTerminal(strings.NewReader(tt.input), &out).Confirm(context.Background(), "Delete?")
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Delete? [y/N] ", out.String())
	}
}

func TestTerminal_LineAndPassword(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(" a@b.c \nhunter2\n"), &out)

	email, err := term.Line("Email")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", email)

	pw, err := term.Password("Password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)

	_, err = term.Line("More")
	assert.ErrorIs(t, err, io.EOF)
}

func TestTerminal_LastLineWithoutNewline(t *testing.T) {
	pw, err := NewTerminal(strings.NewReader("secret"), io.Discard).Password("Password")
	require.NoError(t, err)
	assert.Equal(t, "secret", pw)
}

func TestStatic(t *testing.T) {
	ok, err := Static(true).Confirm(context.Background(), "?")
	require.NoError(t, err)
	assert.True(t, ok)
}
