package ftp

import (
	"context"
	"errors"

	"github.com/developerfred/libunftp/internal/storage"
)

// authExempt lists verbs allowed before login, matching RFC 959's access
// control commands plus the TLS negotiation family.
var authExempt = map[Verb]struct{}{
	VerbUser: {}, VerbPass: {}, VerbAuth: {}, VerbFeat: {},
	VerbHelp: {}, VerbQuit: {}, VerbPbsz: {}, VerbProt: {},
}

// dispatch routes a parsed command through the auth gate to its handler.
func (c *conn) dispatch(ctx context.Context, cmd Command) (Reply, action) {
	if _, exempt := authExempt[cmd.Verb]; !exempt && c.session.State() != StateLoggedIn {
		return NewReply(CodeNotLoggedIn, "Please authenticate"), actionNone
	}

	switch cmd.Verb {
	case VerbUser:
		return c.handleUser(cmd.Arg)
	case VerbPass:
		return c.handlePass(ctx, cmd.Arg)
	case VerbQuit:
		return NewReply(CodeClosingControlConn, "Bye!"), actionQuit
	case VerbAuth:
		return c.handleAuth(cmd.Arg)
	case VerbPbsz:
		return c.handlePbsz(cmd.Arg)
	case VerbProt:
		return c.handleProt(cmd.Arg)
	case VerbCcc:
		return NewReply(CodeCommandNotImplemented, "Keeping the control channel protected"), actionNone
	case VerbSyst:
		return NewReply(CodeSystemType, "UNIX Type: L8"), actionNone
	case VerbType:
		return NewReply(CodeCommandOkay, "Always in binary mode"), actionNone
	case VerbStru:
		return c.handleStru(cmd.Arg)
	case VerbMode:
		return c.handleMode(cmd.Arg)
	case VerbAcct:
		return NewReply(CodeCommandNotImplOkay, "Account not required"), actionNone
	case VerbNoop:
		return NewReply(CodeCommandOkay, "Successfully did nothing"), actionNone
	case VerbHelp:
		return c.handleHelp()
	case VerbFeat:
		return c.handleFeat()
	case VerbStat:
		return c.handleStat(ctx, cmd.Arg)
	case VerbOpts:
		return c.handleOpts(cmd.Arg)
	case VerbAllo:
		// Obsolete, and we just ignore it.
		return NewReply(CodeCommandNotImplOkay, "Ignored"), actionNone
	case VerbPwd:
		return c.handlePwd()
	case VerbCwd:
		return c.handleCwd(ctx, cmd.Arg)
	case VerbCdup:
		return c.handleCwd(ctx, "..")
	case VerbMkd:
		return c.handleMkd(ctx, cmd.Arg)
	case VerbRmd:
		return c.handleRmd(ctx, cmd.Arg)
	case VerbDele:
		return c.handleDele(ctx, cmd.Arg)
	case VerbRnfr:
		return c.handleRnfr(ctx, cmd.Arg)
	case VerbRnto:
		return c.handleRnto(ctx, cmd.Arg)
	case VerbSize:
		return c.handleSize(ctx, cmd.Arg)
	case VerbMdtm:
		return c.handleMdtm(ctx, cmd.Arg)
	case VerbRest:
		return c.handleRest(cmd.Arg)
	case VerbPasv:
		return c.handlePasv()
	case VerbPort:
		return NewReply(CodeCommandNotImplemented, "Use PASV instead"), actionNone
	case VerbRetr:
		return c.handleRetr(ctx, cmd.Arg)
	case VerbStor:
		return c.handleStor(ctx, cmd.Arg)
	case VerbStou:
		return c.handleStou(ctx)
	case VerbList:
		return c.handleList(ctx, cmd.Arg, true)
	case VerbNlst:
		return c.handleList(ctx, cmd.Arg, false)
	case VerbAbor:
		return c.handleAbor()
	default:
		// Unreachable: ParseCommand only yields known verbs.
		return NewReply(CodeSyntaxError, "Command not implemented"), actionNone
	}
}

// mapStorageError translates a backend failure into the matching FTP reply.
func mapStorageError(err error) Reply {
	var serr *storage.Error
	if !errors.As(err, &serr) {
		return NewReply(CodeLocalError, "Local error")
	}
	switch serr.Kind {
	case storage.KindTransientUnavailable:
		return NewReply(CodeTransientFileError, "File not found")
	case storage.KindPermanentUnavailable:
		return NewReply(CodeFileError, "File not found")
	case storage.KindPermissionDenied:
		return NewReply(CodeFileError, "Permission denied")
	case storage.KindPageTypeUnknown:
		return NewReply(CodePageTypeUnknown, "Page type unknown")
	case storage.KindInsufficientSpace:
		return NewReply(CodeOutOfSpace, "Insufficient storage space")
	case storage.KindExceededAllocation:
		return NewReply(CodeExceededAllocation, "Exceeded storage allocation")
	case storage.KindBadFileName:
		return NewReply(CodeBadFileName, "File name not allowed")
	default:
		return NewReply(CodeLocalError, "Local error")
	}
}
