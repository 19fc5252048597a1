package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSaturated  BookmarkType = "saturated"
	BookmarkStarved    BookmarkType = "starved"
	BookmarkRegimeFlap BookmarkType = "regime_flap"
	BookmarkSteady     BookmarkType = "steady"
)

// flapTransitions is the number of regime flips in one window that counts as flapping.
const flapTransitions = 4

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int64        `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in a run from consecutive windows.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	saturated          bool // previous window dropped spawns
	steadyWindowsCount int  // consecutive windows with a stable live count
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady state detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkSaturated(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkRegimeFlap(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkStarved(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSteady(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n history entries, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	if n > size {
		n = size
	}
	out := make([]WindowStats, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

// checkSaturated fires on the first window that drops spawn requests after
// one that did not.
func (bd *BookmarkDetector) checkSaturated(stats WindowStats) *Bookmark {
	was := bd.saturated
	bd.saturated = stats.Dropped > 0
	if !bd.saturated || was {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSaturated,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("Engine at capacity, %d spawns dropped with %d live", stats.Dropped, stats.Live),
	}
}

func (bd *BookmarkDetector) checkRegimeFlap(stats WindowStats) *Bookmark {
	flips := stats.Energizes + stats.CalmDowns
	if flips < flapTransitions {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkRegimeFlap,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("Regime flipped %d times in %d frames", flips, stats.Frames),
	}
}

// checkStarved fires when the median live count falls below half its rolling average.
func (bd *BookmarkDetector) checkStarved(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.LiveP50
	}
	avg := total / float64(len(history))
	if avg < 10 {
		return nil
	}

	if stats.LiveP50 < avg*0.5 {
		return &Bookmark{
			Type:        BookmarkStarved,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Median live count %.0f fell below half the average %.0f", stats.LiveP50, avg),
		}
	}
	return nil
}

// checkSteady fires once when the live count has held steady for five windows.
func (bd *BookmarkDetector) checkSteady(stats WindowStats) *Bookmark {
	if stats.LiveMean < 1 {
		bd.steadyWindowsCount = 0
		return nil
	}

	history := bd.recent(3)
	if len(history) < 3 {
		return nil
	}

	samples := [4]float64{history[0].LiveMean, history[1].LiveMean, history[2].LiveMean, stats.LiveMean}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / 4
	var variance float64
	for _, v := range samples {
		d := v - mean
		variance += d * d
	}
	variance /= 4

	// CV^2 < 0.0025 means CV < 5%
	if mean > 0 && variance/(mean*mean) < 0.0025 {
		bd.steadyWindowsCount++
	} else {
		bd.steadyWindowsCount = 0
	}

	if bd.steadyWindowsCount == 5 {
		return &Bookmark{
			Type:        BookmarkSteady,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Live count steady around %.0f for 5+ windows", mean),
		}
	}
	return nil
}
