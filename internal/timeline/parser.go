package timeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const maxLineBytes = 10 * 1024 * 1024

// LoadEvents reads a JSONL file of normalized timeline events.
// Files ending in .zst are decompressed on the fly.
func LoadEvents(path string) ([]Event, error) {
	var events []Event
	err := withReader(path, func(r io.Reader) error {
		var err error
		events, err = ParseEvents(r)
		return err
	})
	return events, err
}

// LoadRawEvents reads a JSONL file of raw connector events.
func LoadRawEvents(path string) ([]RawEvent, error) {
	var raws []RawEvent
	err := withReader(path, func(r io.Reader) error {
		var err error
		raws, err = ParseRawEvents(r)
		return err
	})
	return raws, err
}

// ParseEvents decodes JSONL timeline events and returns them sorted by TS.
// Unparseable lines are skipped.
func ParseEvents(r io.Reader) ([]Event, error) {
	var events []Event
	err := scanLines(r, func(lineNum int, line []byte) {
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			slog.Debug("skip malformed timeline row", "line", lineNum, "error", err)
			return
		}
		if e.ID == "" {
			slog.Debug("skip timeline row without id", "line", lineNum)
			return
		}
		if e.Actor == "" {
			e.Actor = ActorSystem
		}
		events = append(events, e)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].TS.Before(events[j].TS)
	})
	return events, nil
}

// ParseRawEvents decodes JSONL raw events. Unparseable lines are skipped.
func ParseRawEvents(r io.Reader) ([]RawEvent, error) {
	var raws []RawEvent
	err := scanLines(r, func(lineNum int, line []byte) {
		var raw RawEvent
		if err := json.Unmarshal(line, &raw); err != nil {
			slog.Debug("skip malformed raw row", "line", lineNum, "error", err)
			return
		}
		raws = append(raws, raw)
	})
	if err != nil {
		return nil, err
	}
	return raws, nil
}

func scanLines(r io.Reader, fn func(lineNum int, line []byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fn(lineNum, []byte(line))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan trace: %w", err)
	}
	return nil
}

func withReader(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return fn(f)
	}

	decoder, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()
	return fn(decoder)
}
