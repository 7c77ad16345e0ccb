package ftp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplyString(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		r := NewReply(CodeCommandOkay, "Successfully did nothing")
		assert.Equal(t, "200 Successfully did nothing\r\n", r.String())
	})

	t.Run("empty message keeps code", func(t *testing.T) {
		r := NewReply(CodeCommandOkay)
		assert.Equal(t, "200 \r\n", r.String())
	})

	t.Run("multi line uses continuation form", func(t *testing.T) {
		r := NewReply(CodeSystemStatus, "Extensions supported:", "SIZE", "UTF8", "END")
		assert.Equal(t, "211-Extensions supported:\r\n SIZE\r\n UTF8\r\n211 END\r\n", r.String())
	})

	t.Run("none renders nothing", func(t *testing.T) {
		assert.True(t, ReplyNone().None())
		assert.Empty(t, ReplyNone().String())
	})
}
