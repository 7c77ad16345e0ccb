package ftp

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/developerfred/libunftp/internal/auth"
	"github.com/developerfred/libunftp/internal/storage"
)

func (c *conn) handleUser(arg string) (Reply, action) {
	if arg == "" {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	c.session.SetUsername(arg)
	return NewReply(CodeNeedPassword, "Password Required"), actionNone
}

func (c *conn) handlePass(ctx context.Context, arg string) (Reply, action) {
	if c.session.State() != StateWaitPass {
		return NewReply(CodeBadCommandSequence, "Please supply a username first"), actionNone
	}

	username := c.session.Username()
	sourceIP := remoteIP(c.netConn)

	if !c.server.throttle.Allow(ctx, username, sourceIP) {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "login throttled", "username", username, "source_ip", sourceIP)
		}
		return NewReply(CodeNotLoggedIn, "Too many failed attempts, try again later"), actionNone
	}

	user, err := c.server.authenticator.Authenticate(ctx, username, arg)
	if err != nil {
		c.server.throttle.RecordFailure(ctx, username, sourceIP)
		if errors.Is(err, auth.ErrBadCredentials) || errors.Is(err, auth.ErrAccountDisabled) {
			if c.logger != nil {
				c.logger.InfoContext(ctx, "authentication failed", "username", username)
			}
			return NewReply(CodeNotLoggedIn, "Authentication failed"), actionNone
		}
		if c.logger != nil {
			c.logger.ErrorContext(ctx, "authenticator error", "username", username, "error", err)
		}
		return NewReply(CodeLocalError, "Authentication backend unavailable"), actionNone
	}

	c.server.throttle.Reset(ctx, username, sourceIP)
	c.session.Login(user)
	if c.logger != nil {
		c.logger.InfoContext(ctx, "user logged in", "username", user.Name, "anonymous", user.Anonymous)
	}
	return NewReply(CodeUserLoggedIn, "User logged in, proceed"), actionNone
}

func (c *conn) handleAuth(arg string) (Reply, action) {
	switch strings.ToUpper(arg) {
	case "TLS", "SSL":
		if !c.server.TLSEnabled() {
			return NewReply(CodeCommandNotImplemented, "TLS is not configured"), actionNone
		}
		if c.session.ControlTLS() {
			return NewReply(CodeBadCommandSequence, "Control channel already protected"), actionNone
		}
		return NewReply(CodeAuthOkay, "Proceed with TLS handshake"), actionUpgradeTLS
	default:
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
}

func (c *conn) handlePbsz(arg string) (Reply, action) {
	if !c.session.ControlTLS() {
		return NewReply(CodeBadCommandSequence, "Secure the control channel first"), actionNone
	}
	if arg != "0" {
		return NewReply(CodeParamSyntaxError, "Only PBSZ 0 is supported"), actionNone
	}
	c.session.SetPBSZ()
	return NewReply(CodeCommandOkay, "OK"), actionNone
}

func (c *conn) handleProt(arg string) (Reply, action) {
	if !c.session.ControlTLS() {
		return NewReply(CodeBadCommandSequence, "Secure the control channel first"), actionNone
	}
	if !c.session.PBSZReceived() {
		return NewReply(CodeBadCommandSequence, "Send PBSZ first"), actionNone
	}
	switch strings.ToUpper(arg) {
	case "P":
		c.session.SetDataTLS(true)
		return NewReply(CodeCommandOkay, "Data channel protected"), actionNone
	case "C":
		c.session.SetDataTLS(false)
		return NewReply(CodeCommandOkay, "Data channel clear"), actionNone
	default:
		return NewReply(CodeCommandNotImplemented, "Only P and C are supported"), actionNone
	}
}

func (c *conn) handleStru(arg string) (Reply, action) {
	if strings.ToUpper(arg) == "F" {
		return NewReply(CodeCommandOkay, "OK"), actionNone
	}
	return NewReply(CodeParamSyntaxError, "Only file structure is supported"), actionNone
}

func (c *conn) handleMode(arg string) (Reply, action) {
	if strings.ToUpper(arg) == "S" {
		return NewReply(CodeCommandOkay, "OK"), actionNone
	}
	return NewReply(CodeParamSyntaxError, "Only stream mode is supported"), actionNone
}

func (c *conn) handleHelp() (Reply, action) {
	verbs := make([]string, 0, len(knownVerbs))
	for v := range knownVerbs {
		verbs = append(verbs, string(v))
	}
	sort.Strings(verbs)

	lines := append([]string{"The following commands are recognized:"}, verbs...)
	lines = append(lines, "Help OK")
	return NewReply(CodeHelpMessage, lines...), actionNone
}

func (c *conn) handleFeat() (Reply, action) {
	lines := []string{"Extensions supported:"}
	if c.server.TLSEnabled() {
		lines = append(lines, "AUTH TLS", "PBSZ", "PROT")
	}
	if c.server.storage.Features().Has(storage.FeatureRestart) {
		lines = append(lines, "REST STREAM")
	}
	lines = append(lines, "MDTM", "SIZE", "UTF8", "END")
	return NewReply(CodeSystemStatus, lines...), actionNone
}

func (c *conn) handleStat(ctx context.Context, arg string) (Reply, action) {
	if arg == "" {
		lines := []string{
			"Server status:",
			"Connected from " + c.netConn.RemoteAddr().String(),
			"Logged in as " + c.session.User().Name,
			"TYPE: Binary, STRUcture: File, Mode: Stream",
			"End of status",
		}
		return NewReply(CodeSystemStatus, lines...), actionNone
	}

	vpath := c.session.Resolve(arg)
	fi, err := c.server.storage.Stat(ctx, vpath)
	if err != nil {
		return mapStorageError(err), actionNone
	}
	if !fi.IsDir {
		return NewReply(CodeFileStatus, storage.FormatListLine(fi, timeNow())), actionNone
	}

	entries, err := c.server.storage.List(ctx, vpath)
	if err != nil {
		return mapStorageError(err), actionNone
	}
	lines := []string{"Status of " + vpath + ":"}
	for _, entry := range entries {
		lines = append(lines, storage.FormatListLine(entry, timeNow()))
	}
	lines = append(lines, "End of status")
	return NewReply(CodeFileStatus, lines...), actionNone
}

func (c *conn) handleOpts(arg string) (Reply, action) {
	switch strings.ToUpper(strings.TrimSpace(arg)) {
	case "UTF8 ON", "UTF8":
		return NewReply(CodeCommandOkay, "Always in UTF-8 mode"), actionNone
	default:
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
}
