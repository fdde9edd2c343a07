package sessionlog

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/teslashibe/go-focus/pkg/attention"
)

// CSVSink appends records to a session CSV file.
type CSVSink struct {
	path string

	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	w      *csv.Writer
	closed bool
}

// CreateCSV creates dir if needed and opens a new session file named
// after start. The header row is written immediately.
func CreateCSV(dir string, start time.Time) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}

	path := filepath.Join(dir, start.Format(FileLayout))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}

	buf := bufio.NewWriter(f)
	s := &CSVSink{path: path, file: f, buf: buf, w: csv.NewWriter(buf)}
	if err := s.writeRow(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	return s, nil
}

// Path returns the session file path.
func (s *CSVSink) Path() string {
	return s.path
}

// Write appends one row and flushes it to the file.
func (s *CSVSink) Write(ctx context.Context, rec attention.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.writeRow(fields(rec))
}

func (s *CSVSink) writeRow(row []string) error {
	if err := s.w.Write(row); err != nil {
		return err
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	return s.buf.Flush()
}

// Close flushes and closes the file. Closing twice is a no-op.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.w.Flush()
	if err := s.buf.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// ReadCSV loads a session file. Row times are placed on the date encoded
// in the file name when it has one, rolling over midnight as needed.
func ReadCSV(path string) ([]attention.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	day, _ := StartTime(filepath.Base(path))
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)

	records := make([]attention.Record, 0, len(rows)-1)
	var prev time.Time
	for i, row := range rows[1:] {
		rec, err := parseRow(row, day)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, i+2, err)
		}
		if !prev.IsZero() && rec.Time.Before(prev) {
			day = day.AddDate(0, 0, 1)
			rec.Time = rec.Time.AddDate(0, 0, 1)
		}
		prev = rec.Time
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, day time.Time) (attention.Record, error) {
	clock, err := time.Parse(TimeLayout, row[0])
	if err != nil {
		return attention.Record{}, err
	}
	score, err := strconv.Atoi(row[3])
	if err != nil {
		return attention.Record{}, err
	}
	closed, err := strconv.ParseBool(row[4])
	if err != nil {
		return attention.Record{}, err
	}
	alert, err := strconv.ParseBool(row[5])
	if err != nil {
		return attention.Record{}, err
	}

	return attention.Record{
		Time: day.Add(time.Duration(clock.Hour())*time.Hour +
			time.Duration(clock.Minute())*time.Minute +
			time.Duration(clock.Second())*time.Second),
		Identity:   row[1],
		Emotion:    row[2],
		Score:      score,
		EyesClosed: closed,
		Alert:      alert,
	}, nil
}

// StartTime parses the session start from a file name.
func StartTime(name string) (time.Time, error) {
	return time.ParseInLocation(FileLayout, name, time.Local)
}

// Latest returns the newest session file in dir.
func Latest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isSessionFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", ErrNoSession
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}
