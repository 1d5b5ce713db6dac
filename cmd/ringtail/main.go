// Command ringtail prints the last lines (or bytes) of its input, keeping
// only a bounded window in memory.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sushydev/ringbuffer"
	"github.com/sushydev/ringbuffer/internal/logging"
	"github.com/sushydev/ringbuffer/region"
)

const (
	lineBatch = 64
	chunkSize = 32 * 1024
)

type config struct {
	lines   int
	bytes   int
	logPath string
	debug   bool
	files   []string
}

func parseFlags(args []string) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("ringtail", flag.ContinueOnError)
	fs.IntVar(&cfg.lines, "n", 10, "number of lines to keep")
	fs.IntVar(&cfg.bytes, "c", 0, "keep the last N bytes instead of lines (uses an mmap region)")
	fs.StringVar(&cfg.logPath, "log", "", "also write logs to this file")
	fs.BoolVar(&cfg.debug, "debug", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.lines <= 0 && cfg.bytes <= 0 {
		return cfg, errors.New("-n or -c must be positive")
	}
	cfg.files = fs.Args()
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "ringtail:", err)
		os.Exit(2)
	}

	if err := logging.Setup(cfg.logPath, cfg.debug); err != nil {
		fmt.Fprintln(os.Stderr, "ringtail: failed to setup logging:", err)
	}
	defer logging.Close()

	if err := run(cfg, os.Stdin, os.Stdout); err != nil {
		slog.Error("ringtail failed", "error", err)
		logging.Close()
		os.Exit(1)
	}
}

func run(cfg config, stdin io.Reader, stdout io.Writer) error {
	var input io.Reader = stdin
	if len(cfg.files) > 0 {
		readers := make([]io.Reader, 0, len(cfg.files))
		for _, name := range cfg.files {
			f, err := os.Open(name)
			if err != nil {
				return err
			}
			defer f.Close()
			readers = append(readers, f)
		}
		input = io.MultiReader(readers...)
	}

	if cfg.bytes > 0 {
		return tailBytes(cfg.bytes, input, stdout)
	}
	return tailLines(cfg.lines, input, stdout)
}

func tailLines(n int, r io.Reader, w io.Writer) error {
	buf := ringbuffer.New[string](n, ringbuffer.WithLogger(slog.Default()))

	scanner := bufio.NewScanner(r)
	batch := make([]string, 0, lineBatch)
	total := 0
	for scanner.Scan() {
		batch = append(batch, scanner.Text())
		if len(batch) == lineBatch {
			buf.Enqueue(batch)
			batch = batch[:0]
		}
		total++
	}
	buf.Enqueue(batch)

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	slog.Debug("input consumed", "lines", total, "kept", buf.Len())

	out := bufio.NewWriter(w)
	for line := range buf.Values() {
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.Flush()
}

// newByteBuffer prefers an off-heap mapping and falls back to the Go heap
// where anonymous mappings are not available.
func newByteBuffer(n int) (*ringbuffer.RingBuffer[byte], error) {
	mem, err := region.Map[byte](n)
	if errors.Is(err, region.ErrUnsupported) {
		slog.Debug("mmap unavailable, using heap buffer", "bytes", n)
		return ringbuffer.New[byte](n, ringbuffer.WithLogger(slog.Default())), nil
	}
	if err != nil {
		return nil, err
	}
	return ringbuffer.NewView(mem.Slice(),
		ringbuffer.WithLogger(slog.Default()),
		ringbuffer.WithRelease(mem.Release),
	), nil
}

func tailBytes(n int, r io.Reader, w io.Writer) (err error) {
	buf, err := newByteBuffer(n)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := buf.CleanUp(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	chunk := make([]byte, chunkSize)
	for {
		read, rerr := r.Read(chunk)
		buf.Enqueue(chunk[:read])
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read input: %w", rerr)
		}
	}

	_, err = w.Write(buf.Snapshot())
	return err
}
