package logparse

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DefaultDateLayouts cover the date/time shapes written by the equipment
// controllers once the AM/PM marker has been removed.
var DefaultDateLayouts = []string{
	"2006/1/2 15:04:05",
	"2006-1-2 15:04:05",
	"1/2/2006 15:04:05",
	"1-2-2006 15:04:05",
	"2006/1/2 15:04",
	"1/2/2006 15:04",
}

// ParserConfig configures a Parser.
type ParserConfig struct {
	FramePrefixes  []string
	FrameSuffixLen int
	DateLayouts    []string
}

// DefaultParserConfig returns the settings used on the production floor.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		FramePrefixes:  DefaultFramePrefixes,
		FrameSuffixLen: 4,
		DateLayouts:    DefaultDateLayouts,
	}
}

// Parser reads latin-1 encoded equipment logs.
type Parser struct {
	logger  *slog.Logger
	matcher *FrameMatcher
	layouts []string
}

// NewParser creates a parser. A nil logger falls back to slog.Default().
func NewParser(cfg ParserConfig, logger *slog.Logger) (*Parser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FrameSuffixLen == 0 {
		cfg.FrameSuffixLen = 4
	}
	if len(cfg.FramePrefixes) == 0 {
		cfg.FramePrefixes = DefaultFramePrefixes
	}
	if len(cfg.DateLayouts) == 0 {
		cfg.DateLayouts = DefaultDateLayouts
	}

	matcher, err := NewFrameMatcher(cfg.FramePrefixes, cfg.FrameSuffixLen)
	if err != nil {
		return nil, err
	}

	return &Parser{
		logger:  logger.With(slog.String("component", "logparse")),
		matcher: matcher,
		layouts: cfg.DateLayouts,
	}, nil
}

// ParseFile parses the log at path. An unreadable file yields ErrUnreadable
// and a file without a single valid row yields ErrEmptyLog; both are meant to
// be skipped by batch callers.
func (p *Parser) ParseFile(ctx context.Context, path string) (*EventTable, error) {
	f, err := os.Open(path)
	if err != nil {
		p.logger.WarnContext(ctx, "cannot open log file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, filepath.Base(path), err)
	}
	defer f.Close()

	return p.Parse(ctx, path, f)
}

// Parse reads a log from r. source is used for logging and EventTable.Source.
func (p *Parser) Parse(ctx context.Context, source string, r io.Reader) (*EventTable, error) {
	scanner := bufio.NewScanner(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	table := &EventTable{Source: source}
	var (
		lineNo  int
		dropped int
	)
	for scanner.Scan() {
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		ev, ok := p.parseLine(scanner.Text())
		if !ok {
			dropped++
			continue
		}
		ev.Line = lineNo
		if len(ev.Payload) > table.Width {
			table.Width = len(ev.Payload)
		}
		table.Events = append(table.Events, ev)
	}
	if err := scanner.Err(); err != nil {
		p.logger.WarnContext(ctx, "failed reading log file",
			slog.String("file", source),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, filepath.Base(source), err)
	}

	if len(table.Events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyLog, filepath.Base(source))
	}

	for i := range table.Events {
		if pad := table.Width - len(table.Events[i].Payload); pad > 0 {
			table.Events[i].Payload = append(table.Events[i].Payload, make([]string, pad)...)
		}
	}

	p.logger.DebugContext(ctx, "parsed log file",
		slog.String("file", source),
		slog.Int("lines", lineNo),
		slog.Int("events", len(table.Events)),
		slog.Int("dropped", dropped),
		slog.Int("payload_width", table.Width))

	return table, nil
}

// parseLine applies the silent filtering rules: short lines, malformed
// timestamps and unparsable dates are dropped without error.
func (p *Parser) parseLine(line string) (RawEvent, bool) {
	fields := strings.Split(strings.TrimSpace(line), "\t")
	if len(fields) < 3 {
		return RawEvent{}, false
	}

	stamp := strings.Split(fields[0], " ")
	if len(stamp) != 2 {
		return RawEvent{}, false
	}
	date := stamp[0]
	clock := strings.TrimSpace(strings.NewReplacer("AM", "", "PM", "").Replace(stamp[1]))

	ts, ok := p.parseTimestamp(date + " " + clock)
	if !ok {
		return RawEvent{}, false
	}

	payload := strings.Split(fields[2], ",")
	return RawEvent{
		Date:      date,
		Time:      clock,
		Timestamp: ts,
		Code:      fields[1],
		Frame:     p.matcher.Extract(payload[slotFrame]),
		Payload:   payload,
	}, true
}

func (p *Parser) parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range p.layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
