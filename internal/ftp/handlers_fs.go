package ftp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/developerfred/libunftp/internal/storage"
)

// quotePath renders a path for 257 replies, doubling embedded quotes per
// RFC 959 appendix II.
func quotePath(p string) string {
	return `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
}

func (c *conn) handlePwd() (Reply, action) {
	return NewReply(CodeDirCreated, quotePath(c.session.Cwd())), actionNone
}

func (c *conn) handleCwd(ctx context.Context, arg string) (Reply, action) {
	if arg == "" {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	dir := c.session.Resolve(arg)
	fi, err := c.server.storage.Stat(ctx, dir)
	if err != nil {
		return mapStorageError(err), actionNone
	}
	if !fi.IsDir {
		return NewReply(CodeFileError, "Not a directory"), actionNone
	}
	c.session.ChangeDir(dir)
	return NewReply(CodeFileActionOkay, "Successfully cwd"), actionNone
}

func (c *conn) handleMkd(ctx context.Context, arg string) (Reply, action) {
	if arg == "" {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	dir := c.session.Resolve(arg)
	if err := c.server.storage.Mkd(ctx, dir); err != nil {
		return mapStorageError(err), actionNone
	}
	return NewReply(CodeDirCreated, quotePath(dir)+" created"), actionNone
}

func (c *conn) handleRmd(ctx context.Context, arg string) (Reply, action) {
	if arg == "" {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	if err := c.server.storage.Rmd(ctx, c.session.Resolve(arg)); err != nil {
		return mapStorageError(err), actionNone
	}
	return NewReply(CodeFileActionOkay, "Directory successfully removed"), actionNone
}

func (c *conn) handleDele(ctx context.Context, arg string) (Reply, action) {
	if arg == "" {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	if err := c.server.storage.Del(ctx, c.session.Resolve(arg)); err != nil {
		return mapStorageError(err), actionNone
	}
	return NewReply(CodeFileActionOkay, "File successfully removed"), actionNone
}

func (c *conn) handleRnfr(ctx context.Context, arg string) (Reply, action) {
	if arg == "" {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	from := c.session.Resolve(arg)
	if _, err := c.server.storage.Stat(ctx, from); err != nil {
		return mapStorageError(err), actionNone
	}
	c.session.SetRenameFrom(from)
	return NewReply(CodeFileActionPending, "Tell me the new name"), actionNone
}

func (c *conn) handleRnto(ctx context.Context, arg string) (Reply, action) {
	if arg == "" {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	from := c.session.TakeRenameFrom()
	if from == "" {
		return NewReply(CodeBadCommandSequence, "Send RNFR first"), actionNone
	}
	if err := c.server.storage.Rename(ctx, from, c.session.Resolve(arg)); err != nil {
		return mapStorageError(err), actionNone
	}
	return NewReply(CodeFileActionOkay, "Renamed"), actionNone
}

func (c *conn) handleSize(ctx context.Context, arg string) (Reply, action) {
	if arg == "" {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	fi, err := c.server.storage.Stat(ctx, c.session.Resolve(arg))
	if err != nil {
		return mapStorageError(err), actionNone
	}
	if fi.IsDir {
		return NewReply(CodeFileError, "Not a regular file"), actionNone
	}
	return NewReply(CodeFileStatus, strconv.FormatInt(fi.Size, 10)), actionNone
}

func (c *conn) handleMdtm(ctx context.Context, arg string) (Reply, action) {
	if arg == "" {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	fi, err := c.server.storage.Stat(ctx, c.session.Resolve(arg))
	if err != nil {
		return mapStorageError(err), actionNone
	}
	return NewReply(CodeFileStatus, fi.ModTime.UTC().Format("20060102150405")), actionNone
}

func (c *conn) handleRest(arg string) (Reply, action) {
	if !c.server.storage.Features().Has(storage.FeatureRestart) {
		return NewReply(CodeCommandNotImplemented, "Restart not supported"), actionNone
	}
	offset, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || offset < 0 {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	c.session.SetRestOffset(offset)
	return NewReply(CodeFileActionPending, fmt.Sprintf("Restarting at %d. Now send STOR or RETR", offset)), actionNone
}
