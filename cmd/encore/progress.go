package main

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"encore/internal/progress"
)

// watchProgress renders one aggregate upload bar fed by the tracker while a
// submission runs. The returned stop function finalizes the bar; on a
// non-terminal stderr nothing is rendered at all.
func watchProgress(tracker *progress.Tracker, description string) (stop func()) {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return func() {}
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(false),
	)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(150 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if pct, ok := aggregate(tracker.Snapshot()); ok {
					_ = bar.Set(pct)
				}
			}
		}
	}()

	return func() {
		close(done)
		<-finished
		_ = bar.Finish()
	}
}

// aggregate reduces per-field percentages to one number: the mean across all
// tracked fields.
func aggregate(snapshot map[string]int) (int, bool) {
	if len(snapshot) == 0 {
		return 0, false
	}
	total := 0
	for _, pct := range snapshot {
		total += pct
	}
	return total / len(snapshot), true
}
