package chunk

import (
	"strings"
	"unicode"
)

// Adaptive sizing weights. The score is deterministic for a given window,
// so chunk boundaries are reproducible across runs.
const (
	symbolWeight = 0.6
	lineWeight   = 0.4

	// symbolSaturation is the symbol ratio at which the symbol factor
	// reaches 1.0. Prose sits well below it; code and tables exceed it.
	symbolSaturation = 0.25

	// proseLineLength is the average line length treated as ordinary
	// prose. Shorter lines (lists, code) raise the density score.
	proseLineLength = 80.0
)

// adaptiveTarget returns the chunk size target for the window starting at
// start. Denser, structured content (code blocks, tables, tight lists)
// yields a smaller target so each embedding stays focused; plain prose
// keeps the full MaxSize.
func adaptiveTarget(text string, start int, opts Options) int {
	end := start + opts.MaxSize
	if end > len(text) {
		end = len(text)
	}
	window := text[start:end]

	score := densityScore(window)
	target := opts.MaxSize - int(float64(opts.MaxSize)*0.5*score)

	floor := MinChunkSize
	if floor > opts.MaxSize {
		floor = opts.MaxSize
	}
	if floor <= opts.Overlap {
		floor = opts.Overlap + 1
	}
	if target < floor {
		target = floor
	}
	return target
}

// densityScore estimates structural density in [0, 1] from the ratio of
// symbol characters and the average line length.
func densityScore(window string) float64 {
	if window == "" {
		return 0
	}

	var symbols, total int
	for _, r := range window {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			symbols++
		}
	}
	if total == 0 {
		return 0
	}

	symbolFactor := float64(symbols) / float64(total) / symbolSaturation
	if symbolFactor > 1 {
		symbolFactor = 1
	}

	lines := strings.Split(window, "\n")
	var lineSum int
	for _, line := range lines {
		lineSum += len(line)
	}
	avgLine := float64(lineSum) / float64(len(lines))
	lineFactor := 1 - avgLine/proseLineLength
	if lineFactor < 0 {
		lineFactor = 0
	}

	return symbolWeight*symbolFactor + lineWeight*lineFactor
}
