// Package spotdl adapts the spotdl command line tool to the fetcher
// boundary. It spawns one process per fetch, scans its output for per-song
// progress, and collects the MP3 files it leaves in the scratch directory.
package spotdl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baixafy/baixafy-api/internal/fetcher"
)

const (
	defaultBinary        = "spotdl"
	defaultFFmpeg        = "ffmpeg"
	defaultTimeout       = 5 * time.Minute
	defaultHealthTimeout = 15 * time.Second
	stderrTailLines      = 10
)

type Client struct {
	binary        string
	ffmpeg        string
	timeout       time.Duration
	healthTimeout time.Duration
}

func New(opts ...Option) *Client {
	c := &Client{
		binary:        defaultBinary,
		ffmpeg:        defaultFFmpeg,
		timeout:       defaultTimeout,
		healthTimeout: defaultHealthTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type Option func(*Client)

func WithBinary(path string) Option {
	return func(c *Client) { c.binary = path }
}

func WithFFmpeg(path string) Option {
	return func(c *Client) { c.ffmpeg = path }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Healthy runs `spotdl --version` and `ffmpeg -version`. Either failing
// means the tool chain cannot produce output and fetches would be wasted.
func (c *Client) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	if err := exec.CommandContext(ctx, c.binary, "--version").Run(); err != nil {
		return fmt.Errorf("%w: %s: %v", fetcher.ErrUnavailable, c.binary, err)
	}
	if err := exec.CommandContext(ctx, c.ffmpeg, "-version").Run(); err != nil {
		return fmt.Errorf("%w: %s: %v", fetcher.ErrUnavailable, c.ffmpeg, err)
	}
	return nil
}

// Fetch invokes spotdl against ref with scratchDir as the output directory.
// The process is killed when the execution ceiling elapses; a non-zero exit
// that still produced files is treated as a partial success and reported
// through itemErrs rather than err.
func (c *Client) Fetch(ctx context.Context, ref string, scratchDir string, onProgress fetcher.Progress) ([]string, []fetcher.ItemError, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary,
		ref,
		"--output", scratchDir,
		"--format", "mp3",
		"--bitrate", "320k",
		"--ffmpeg", c.ffmpeg,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start %s: %w", c.binary, err)
	}

	var (
		itemErrs   []fetcher.ItemError
		total      int
		completed  int
		stderrTail []string
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			ev, ok := parseLine(scanner.Text())
			if !ok {
				continue
			}
			switch ev.Kind {
			case eventTotal:
				total = ev.Total
			case eventDownloaded:
				completed++
				if onProgress != nil {
					onProgress(ev.Item, total, completed)
				}
			case eventItemError:
				itemErrs = append(itemErrs, fetcher.ItemError{Item: ev.Item, Err: ev.Err})
			}
		}
		return nil
	})
	g.Go(func() error {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			stderrTail = append(stderrTail, scanner.Text())
			if len(stderrTail) > stderrTailLines {
				stderrTail = stderrTail[1:]
			}
		}
		return nil
	})
	_ = g.Wait()
	waitErr := cmd.Wait()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, itemErrs, fetcher.ErrTimeout
	}

	files, err := producedFiles(scratchDir)
	if err != nil {
		return nil, itemErrs, err
	}

	if waitErr != nil && len(files) == 0 {
		return nil, itemErrs, fmt.Errorf("%s failed: %w: %s", c.binary, waitErr, strings.Join(stderrTail, " | "))
	}
	return files, itemErrs, nil
}

func producedFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if err != nil {
		return nil, fmt.Errorf("scan scratch dir: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
