package pkg

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestCombinedWriter_Write(t *testing.T) {
	stdout := &strings.Builder{}
	stdout.WriteString("boot;")
	logFile := &strings.Builder{}

	cw := NewCombinedWriter(stdout, logFile)
	require.Len(t, cw.Writers, 2)

	line := "event logged: wake_up"
	n, err := cw.Write([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, 2*len(line), n)

	assert.Equal(t, "boot;"+line, stdout.String())
	assert.Equal(t, line, logFile.String())
}

func TestCombinedWriter_Write_WithErrors(t *testing.T) {
	sb := &strings.Builder{}
	cw := NewCombinedWriter(faultyWriter{msg: "disk full"}, sb, faultyWriter{msg: "closed"})

	n, err := cw.Write([]byte("bedtime"))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "closed")

	// written only to the string builder
	assert.Equal(t, len("bedtime"), n)
	assert.Equal(t, "bedtime", sb.String())
}

type faultyWriter struct {
	msg string
}

func (fw faultyWriter) Write([]byte) (int, error) {
	return 0, errors.New(fw.msg)
}
