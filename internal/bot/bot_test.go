package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in      string
		wantCmd string
		wantArg []string
	}{
		{"!balance", "balance", nil},
		{"!Balance", "balance", nil},
		{"!transfer <@123> 50", "transfer", []string{"<@123>", "50"}},
		{"  !daily  ", "daily", nil},
		{"!", "", nil},
		{"!   ", "", nil},
	}
	for _, tt := range tests {
		cmd, args := parseCommand(tt.in, "!")
		assert.Equal(t, tt.wantCmd, cmd, tt.in)
		assert.Equal(t, tt.wantArg, args, tt.in)
	}
}

func TestParseCommand_CustomPrefix(t *testing.T) {
	cmd, args := parseCommand("?donate 100 mosque", "?")
	assert.Equal(t, "donate", cmd)
	assert.Equal(t, []string{"100", "mosque"}, args)
}
