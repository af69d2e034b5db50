// Package logtail reads the end of booktracker's own log file.
package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Options controls Read. Lines <= 0 returns every matching line.
type Options struct {
	Lines    int
	MinLevel slog.Level
}

// Read returns the last opts.Lines lines of the file at path whose slog
// level is at least opts.MinLevel. Lines without a level= attribute are kept.
// A missing file yields no lines.
func Read(path string, opts Options) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var ring []string
	if opts.Lines > 0 {
		ring = make([]string, opts.Lines)
	}
	var all []string
	count, idx := 0, 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !levelAtLeast(line, opts.MinLevel) {
			continue
		}
		if ring == nil {
			all = append(all, line)
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % opts.Lines
		if count < opts.Lines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if ring == nil {
		return all, nil
	}
	lines := make([]string, count)
	if count == opts.Lines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%opts.Lines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

func levelAtLeast(line string, min slog.Level) bool {
	i := strings.Index(line, "level=")
	if i < 0 {
		return true
	}
	rest := line[i+len("level="):]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		rest = rest[:j]
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(rest)); err != nil {
		return true
	}
	return lvl >= min
}
