package ftp

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Verb is an FTP command verb, always upper case.
type Verb string

// The verbs this server understands.
const (
	VerbAbor Verb = "ABOR"
	VerbAcct Verb = "ACCT"
	VerbAllo Verb = "ALLO"
	VerbAuth Verb = "AUTH"
	VerbCcc  Verb = "CCC"
	VerbCdup Verb = "CDUP"
	VerbCwd  Verb = "CWD"
	VerbDele Verb = "DELE"
	VerbFeat Verb = "FEAT"
	VerbHelp Verb = "HELP"
	VerbList Verb = "LIST"
	VerbMdtm Verb = "MDTM"
	VerbMkd  Verb = "MKD"
	VerbMode Verb = "MODE"
	VerbNlst Verb = "NLST"
	VerbNoop Verb = "NOOP"
	VerbOpts Verb = "OPTS"
	VerbPass Verb = "PASS"
	VerbPasv Verb = "PASV"
	VerbPbsz Verb = "PBSZ"
	VerbPort Verb = "PORT"
	VerbProt Verb = "PROT"
	VerbPwd  Verb = "PWD"
	VerbQuit Verb = "QUIT"
	VerbRest Verb = "REST"
	VerbRetr Verb = "RETR"
	VerbRmd  Verb = "RMD"
	VerbRnfr Verb = "RNFR"
	VerbRnto Verb = "RNTO"
	VerbSize Verb = "SIZE"
	VerbStat Verb = "STAT"
	VerbStor Verb = "STOR"
	VerbStou Verb = "STOU"
	VerbStru Verb = "STRU"
	VerbSyst Verb = "SYST"
	VerbType Verb = "TYPE"
	VerbUser Verb = "USER"
)

var knownVerbs = map[Verb]struct{}{
	VerbAbor: {}, VerbAcct: {}, VerbAllo: {}, VerbAuth: {}, VerbCcc: {},
	VerbCdup: {}, VerbCwd: {}, VerbDele: {}, VerbFeat: {}, VerbHelp: {},
	VerbList: {}, VerbMdtm: {}, VerbMkd: {}, VerbMode: {}, VerbNlst: {},
	VerbNoop: {}, VerbOpts: {}, VerbPass: {}, VerbPasv: {}, VerbPbsz: {},
	VerbPort: {}, VerbProt: {}, VerbPwd: {}, VerbQuit: {}, VerbRest: {},
	VerbRetr: {}, VerbRmd: {}, VerbRnfr: {}, VerbRnto: {}, VerbSize: {},
	VerbStat: {}, VerbStor: {}, VerbStou: {}, VerbStru: {}, VerbSyst: {},
	VerbType: {}, VerbUser: {},
}

// Command is one parsed control channel line.
type Command struct {
	Verb Verb
	// Arg is everything after the verb, Telnet trailer stripped. May be
	// empty.
	Arg string
}

// ParseErrorKind categorizes command parse failures so the control loop can
// choose the right reply code.
type ParseErrorKind int

const (
	// KindUnknownCommand: the verb is not implemented (500).
	KindUnknownCommand ParseErrorKind = iota
	// KindInvalidSyntax: known verb with a malformed argument (501).
	KindInvalidSyntax
	// KindInvalidUTF8: non-UTF8 bytes in the command (500).
	KindInvalidUTF8
)

// ParseError is returned by ParseCommand.
type ParseError struct {
	Kind ParseErrorKind
	// Verb is set for KindUnknownCommand.
	Verb string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindUnknownCommand:
		return fmt.Sprintf("unknown command %q", e.Verb)
	case KindInvalidUTF8:
		return "non-UTF8 character in command"
	default:
		return "invalid command parameter"
	}
}

// ParseCommand parses one control channel line (without the CRLF trailer).
func ParseCommand(line string) (Command, error) {
	if !utf8.ValidString(line) {
		return Command{}, &ParseError{Kind: KindInvalidUTF8}
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Command{}, &ParseError{Kind: KindInvalidSyntax}
	}

	verbToken, arg, _ := strings.Cut(line, " ")
	verb := Verb(strings.ToUpper(verbToken))
	if _, ok := knownVerbs[verb]; !ok {
		return Command{}, &ParseError{Kind: KindUnknownCommand, Verb: verbToken}
	}
	return Command{Verb: verb, Arg: strings.TrimSpace(arg)}, nil
}
