package nbgl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hwsim/nbgl/screen"
)

// CaptureExt is the filename extension batch verification picks up.
const CaptureExt = ".nbgl"

// Verifier renders recorded command streams and compares the result against
// the golden screenshot database.
type Verifier struct {
	db            *GoldenDB
	width, height int
	forceFullOCR  bool
	logger        *log.Logger
}

// NewVerifier returns a Verifier rendering captures at the given screen
// geometry.
func NewVerifier(db *GoldenDB, width, height int, forceFullOCR bool, logger *log.Logger) *Verifier {
	return &Verifier{
		db:           db,
		width:        width,
		height:       height,
		forceFullOCR: forceFullOCR,
		logger:       logger,
	}
}

// Render replays the capture at file into a fresh screen and returns it.
func (v *Verifier) Render(file string) (*screen.Screen, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scr := screen.New(v.width, v.height)
	r := New(scr, v.width, v.height, v.forceFullOCR, v.logger)
	if err := r.Replay(f); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return scr, nil
}

// scenarioName derives the golden name from a capture path.
func scenarioName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}

func (v *Verifier) findCaptures(ctx context.Context, base string) (<-chan string, <-chan error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || filepath.Ext(file) != CaptureExt {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc
}

func (v *Verifier) captureWorker(in <-chan string, mismatches *int64) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			scr, err := v.Render(file)
			if err != nil {
				errc <- err
				return
			}

			ok, err := v.db.Verify(scenarioName(file), scr.Image())
			if err != nil {
				errc <- err
				return
			}
			if !ok {
				v.logger.Printf("Screenshot mismatch for \"%s\"\n", file)
				atomic.AddInt64(mismatches, 1)
			}
		}
	}()
	return errc
}

// Scan walks a directory tree, renders every capture in it and verifies each
// against the golden of the same base name. It returns an error when any
// capture fails to render or to match.
func (v *Verifier) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error
	var mismatches int64

	captures, errc := v.findCaptures(ctx, dir)
	errcList = append(errcList, errc)

	for i := 0; i < 10; i++ {
		errcList = append(errcList, v.captureWorker(captures, &mismatches))
	}

	if err := waitForPipeline(errcList...); err != nil {
		return err
	}

	if n := atomic.LoadInt64(&mismatches); n > 0 {
		return fmt.Errorf("%d screenshot mismatches", n)
	}
	return nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
