package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

// progressInterval is the number of pixels between bar redraws.
const progressInterval = 4096

// progressBar renders the progress of one run with a bubbles progress
// bar. A single run redraws its line in place; concurrent runs share the
// writer and print one line when they finish.
type progressBar struct {
	mu      *sync.Mutex
	w       io.Writer
	label   string
	inPlace bool
	bar     progress.Model
	total   int64
}

func newProgressBar(mu *sync.Mutex, w io.Writer, file string, inPlace bool) *progressBar {
	return &progressBar{
		mu:      mu,
		w:       w,
		label:   filepath.Base(file),
		inPlace: inPlace,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *progressBar) Start(total int64) {
	p.total = total
	p.draw(0)
}

func (p *progressBar) Update(done int64) {
	if p.inPlace {
		p.draw(done)
	}
}

func (p *progressBar) Finish(done int64) {
	p.draw(done)
	if p.inPlace {
		p.mu.Lock()
		fmt.Fprintln(p.w)
		p.mu.Unlock()
	}
}

func (p *progressBar) UpdateInterval() int64 { return progressInterval }

func (p *progressBar) draw(done int64) {
	pct := 1.0
	if p.total > 0 {
		pct = float64(done) / float64(p.total)
	}
	if !p.inPlace && pct < 1 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	line := fmt.Sprintf("%-20s %s", p.label, p.bar.ViewAs(pct))
	if p.inPlace {
		fmt.Fprint(p.w, "\r"+line)
	} else {
		fmt.Fprintln(p.w, line)
	}
}
