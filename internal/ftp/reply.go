// Package ftp implements the FTP control channel: command parsing, the
// per-connection session state machine, command handlers, passive data
// connections and the server accept loop. Storage and authentication are
// delegated to the storage and auth packages.
package ftp

import "strings"

// Reply codes from RFC 959 (and RFC 2228/4217 for the AUTH family) used by
// this server.
const (
	CodeFileStatusOkay        = 150
	CodeCommandOkay           = 200
	CodeCommandNotImplOkay    = 202
	CodeSystemStatus          = 211
	CodeFileStatus            = 213
	CodeHelpMessage           = 214
	CodeSystemType            = 215
	CodeServiceReady          = 220
	CodeClosingControlConn    = 221
	CodeClosingDataConn       = 226
	CodeEnteringPassiveMode   = 227
	CodeUserLoggedIn          = 230
	CodeAuthOkay              = 234
	CodeFileActionOkay        = 250
	CodeDirCreated            = 257
	CodeNeedPassword          = 331
	CodeFileActionPending     = 350
	CodeCantOpenDataConn      = 425
	CodeConnectionClosed      = 426
	CodeTransientFileError    = 450
	CodeLocalError            = 451
	CodeOutOfSpace            = 452
	CodeSyntaxError           = 500
	CodeParamSyntaxError      = 501
	CodeCommandNotImplemented = 502
	CodeBadCommandSequence    = 503
	CodeNotLoggedIn           = 530
	CodeFileError             = 550
	CodePageTypeUnknown       = 551
	CodeExceededAllocation    = 552
	CodeBadFileName           = 553
)

// Reply is a single control channel response. A zero Reply (code 0) means
// "send nothing"; handlers use it when a transfer goroutine will deliver the
// final reply later.
type Reply struct {
	Code  int
	Lines []string
}

// NewReply constructs a single or multi-line reply.
func NewReply(code int, lines ...string) Reply {
	if len(lines) == 0 {
		lines = []string{""}
	}
	return Reply{Code: code, Lines: lines}
}

// ReplyNone is the "send nothing" reply.
func ReplyNone() Reply {
	return Reply{}
}

// None reports whether the reply should be suppressed.
func (r Reply) None() bool {
	return r.Code == 0
}

// String renders the reply in wire format, CRLF terminated. Multi-line
// replies use the RFC 959 "xyz-" continuation form.
func (r Reply) String() string {
	if r.None() {
		return ""
	}

	code := itoa3(r.Code)
	if len(r.Lines) == 1 {
		return code + " " + r.Lines[0] + "\r\n"
	}

	var b strings.Builder
	last := len(r.Lines) - 1
	b.WriteString(code + "-" + r.Lines[0] + "\r\n")
	for _, line := range r.Lines[1:last] {
		b.WriteString(" " + line + "\r\n")
	}
	b.WriteString(code + " " + r.Lines[last] + "\r\n")
	return b.String()
}

func itoa3(code int) string {
	// Reply codes are always three digits.
	digits := [3]byte{
		byte('0' + code/100%10),
		byte('0' + code/10%10),
		byte('0' + code%10),
	}
	return string(digits[:])
}
