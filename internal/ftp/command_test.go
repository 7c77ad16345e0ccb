package ftp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{name: "bare verb", line: "PASV\r\n", want: Command{Verb: VerbPasv}},
		{name: "verb with arg", line: "USER alice\r\n", want: Command{Verb: VerbUser, Arg: "alice"}},
		{name: "lowercase verb", line: "user alice\r\n", want: Command{Verb: VerbUser, Arg: "alice"}},
		{name: "arg keeps inner spaces", line: "STOR annual report.txt\r\n", want: Command{Verb: VerbStor, Arg: "annual report.txt"}},
		{name: "no trailer", line: "NOOP", want: Command{Verb: VerbNoop}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCommand(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind ParseErrorKind
	}{
		{name: "unknown verb", line: "MAKEMEASANDWICH\r\n", kind: KindUnknownCommand},
		{name: "empty line", line: "\r\n", kind: KindInvalidSyntax},
		{name: "invalid utf8", line: "USER \xff\xfe\r\n", kind: KindInvalidUTF8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCommand(tc.line)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.kind, perr.Kind)
		})
	}
}
