package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	t.Run("trims the newline", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("hello\n"))
		var out bytes.Buffer

		text, err := GetSimpleText(r, "Say something", &out)
		require.NoError(t, err)
		assert.Equal(t, "hello", text)
		assert.Contains(t, out.String(), "Say something")
	})

	t.Run("partial line at EOF is returned", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("no newline"))
		var out bytes.Buffer

		text, err := GetSimpleText(r, "p", &out)
		require.NoError(t, err)
		assert.Equal(t, "no newline", text)
	})

	t.Run("bare EOF is an error", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader(""))
		var out bytes.Buffer

		_, err := GetSimpleText(r, "p", &out)
		require.Error(t, err)
	})
}

func TestGetPassword(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }

	var out bytes.Buffer
	pw, err := GetPassword(&out, "Enter password")
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Contains(t, out.String(), "Enter password")
}

func TestGetFloat(t *testing.T) {
	t.Run("parses a number", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("12.5\n"))
		var out bytes.Buffer

		v, ok, err := GetFloat(r, "Amount", &out)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 12.5, v)
	})

	t.Run("empty line means unset", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("\n"))
		var out bytes.Buffer

		_, ok, err := GetFloat(r, "Amount", &out)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("garbage is an error", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("abc\n"))
		var out bytes.Buffer

		_, _, err := GetFloat(r, "Amount", &out)
		require.Error(t, err)
	})
}
