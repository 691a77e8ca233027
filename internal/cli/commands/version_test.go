package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{version: "0.1.0", want: "fprime-extras v0.1.0\n"},
		{version: "dev", want: "fprime-extras vdev\n"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetArgs(nil)

			require.NoError(t, cmd.Execute())
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "topology checks")
		})
	}
}
