// Package metrics defines the standard metric names and tag shapes emitted by
// the FTP server. All helpers are nil-safe with respect to the sink.
package metrics

import (
	"strconv"
	"time"

	"github.com/developerfred/libunftp/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Transfer direction constants for metric tagging.
const (
	DirectionRetrieve = "retrieve"
	DirectionStore    = "store"
)

// EmitCommand counts a handled control channel command.
func EmitCommand(sink statsd.Sink, verb, result string) {
	if sink == nil {
		return
	}
	sink.Count("ftp.command", 1, map[string]string{
		"command": verb,
		"result":  result,
	})
}

// EmitReply counts a reply sent on the control channel, tagged by code.
func EmitReply(sink statsd.Sink, code int) {
	if sink == nil {
		return
	}
	sink.Count("ftp.reply", 1, map[string]string{
		"code": strconv.Itoa(code),
	})
}

// EmitControlError counts a control channel error by kind.
func EmitControlError(sink statsd.Sink, kind string) {
	if sink == nil {
		return
	}
	sink.Count("ftp.error", 1, map[string]string{"kind": kind})
}

// EmitSessions records the current number of open control connections.
func EmitSessions(sink statsd.Sink, active int64) {
	if sink == nil {
		return
	}
	sink.Gauge("ftp.sessions.active", float64(active), nil)
}

// TransferMetric captures details about a completed data transfer.
type TransferMetric struct {
	Direction string
	Bytes     int64
	Duration  time.Duration
	Result    string
}

// EmitTransfer emits standardised transfer metrics.
func EmitTransfer(sink statsd.Sink, in TransferMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"direction": in.Direction,
		"result":    in.Result,
	}
	sink.Count("ftp.transfer.bytes", in.Bytes, tags)
	if in.Duration > 0 {
		sink.Timing("ftp.transfer.duration", in.Duration, map[string]string{
			"direction": in.Direction,
			"result":    in.Result,
		})
	}
}
