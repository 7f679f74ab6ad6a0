package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"asrprep/internal/prep"
)

// progressReporter draws one bar per split. Workers report concurrently.
type progressReporter struct {
	out  io.Writer
	mu   sync.Mutex
	bars map[string]*progressbar.ProgressBar
}

func newProgressReporter(out io.Writer) *progressReporter {
	return &progressReporter{out: out, bars: make(map[string]*progressbar.ProgressBar)}
}

func (p *progressReporter) update(split string, done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bar, ok := p.bars[split]
	if !ok {
		out := p.out
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription(fmt.Sprintf("%-5s", split)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
		)
		p.bars[split] = bar
	}
	_ = bar.Set(done)
}

func (p *progressReporter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, bar := range p.bars {
		if !bar.IsFinished() {
			_ = bar.Exit()
		}
	}
}

// progressFunc returns a reporter writing to w when w is a terminal.
func progressFunc(w io.Writer) (prep.ProgressFunc, func()) {
	if !isTerminal(w) {
		return nil, func() {}
	}
	reporter := newProgressReporter(w)
	return reporter.update, reporter.finish
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
