// Package sessionlog persists emitted attention records.
//
// The CSV file is the durable record of a session and is what the report
// command reads back. A Redis stream can mirror the same rows for live
// consumers.
package sessionlog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/teslashibe/go-focus/pkg/attention"
)

var (
	// ErrSinkUnavailable is returned when a sink cannot be opened.
	ErrSinkUnavailable = errors.New("sessionlog: sink unavailable")

	// ErrClosed is returned when writing to a closed sink.
	ErrClosed = errors.New("sessionlog: sink closed")

	// ErrNoSession is returned when a directory holds no session files.
	ErrNoSession = errors.New("sessionlog: no session found")

	// ErrMalformedRow is returned for CSV rows that cannot be parsed.
	ErrMalformedRow = errors.New("sessionlog: malformed row")
)

// Column names, in file order.
var Header = []string{"Timestamp", "Name", "Emotion", "Focus_Score", "Eyes_Closed", "Alert"}

const (
	// TimeLayout formats the Timestamp column.
	TimeLayout = "15:04:05"

	// FileLayout names session files.
	FileLayout = "session_2006-01-02_15-04-05.csv"
)

// Multi writes every record to a primary sink and to best-effort mirrors.
// Only primary failures are returned. Mirror failures go to MirrorFailed
// and never stop the session.
type Multi struct {
	primary attention.Sink
	mirrors []attention.Sink

	// MirrorFailed is called for each failed mirror write. Optional.
	MirrorFailed func(err error)
}

// NewMulti fans out to primary and mirrors. Nil mirrors are dropped.
func NewMulti(primary attention.Sink, mirrors ...attention.Sink) *Multi {
	m := &Multi{primary: primary}
	for _, s := range mirrors {
		if s != nil {
			m.mirrors = append(m.mirrors, s)
		}
	}
	return m
}

// Write delivers rec to the primary and then to every mirror.
func (m *Multi) Write(ctx context.Context, rec attention.Record) error {
	if err := m.primary.Write(ctx, rec); err != nil {
		return err
	}
	for _, s := range m.mirrors {
		if err := s.Write(ctx, rec); err != nil && m.MirrorFailed != nil {
			m.MirrorFailed(err)
		}
	}
	return nil
}

// Close closes every sink.
func (m *Multi) Close() error {
	errs := []error{m.primary.Close()}
	for _, s := range m.mirrors {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func fields(rec attention.Record) []string {
	return []string{
		rec.Time.Format(TimeLayout),
		rec.Identity,
		rec.Emotion,
		strconv.Itoa(rec.Score),
		formatBool(rec.EyesClosed),
		formatBool(rec.Alert),
	}
}

func isSessionFile(name string) bool {
	return strings.HasPrefix(name, "session_") && strings.HasSuffix(name, ".csv")
}

var (
	_ attention.Sink = (*Multi)(nil)
	_ attention.Sink = (*CSVSink)(nil)
	_ attention.Sink = (*RedisSink)(nil)
)
