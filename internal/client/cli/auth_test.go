package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubInput(t *testing.T, answers []string, password string) {
	t.Helper()
	origText, origPassword := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText, getPassword = origText, origPassword
	})

	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		answer := answers[i]
		i++
		return answer, nil
	}
	getPassword = func(io.Writer, string) ([]byte, error) {
		return []byte(password), nil
	}
}

func TestDeleteAccount_AbortsWithoutConfirmation(t *testing.T) {
	stubInput(t, []string{"no thanks"}, "pw")

	var out bytes.Buffer
	a := &App{out: &out, reader: bufio.NewReader(strings.NewReader(""))}

	// session stays nil: an aborted deletion must never reach it.
	err := a.DeleteAccount(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Aborted.")
}
