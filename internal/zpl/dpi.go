package zpl

import "sort"

// Alternative resolutions tried after the configured default.
var candidateDPIs = []int{300, 600}

// candidates returns the default resolution followed by the alternatives,
// without duplicates.
func (c *Codec) candidates() []int {
	out := []int{c.dpi}
	for _, dpi := range candidateDPIs {
		if dpi != c.dpi {
			out = append(out, dpi)
		}
	}
	return out
}

// InferDPI picks the resolution under which a dot-based label looks most
// like a real label. ZPL payloads carry no resolution, so this is a
// heuristic and can be wrong for labels that are plausible at several
// resolutions. Each candidate is scored on the physical label size and on
// the median text height in points; ties go to the earliest candidate.
func InferDPI(candidates []int, widthDots, heightDots int, textHeights []int) int {
	if len(candidates) == 0 {
		return 0
	}
	median, hasText := medianOf(textHeights)

	best, bestScore := candidates[0], scoreDPI(candidates[0], widthDots, heightDots, median, hasText)
	for _, dpi := range candidates[1:] {
		if s := scoreDPI(dpi, widthDots, heightDots, median, hasText); s > bestScore {
			best, bestScore = dpi, s
		}
	}
	return best
}

func scoreDPI(dpi, widthDots, heightDots int, medianText float64, hasText bool) int {
	if dpi <= 0 {
		return -1 << 30
	}
	score := 0
	for _, dots := range []int{widthDots, heightDots} {
		if dots > 0 {
			score += scoreDimension(float64(dots) * mmPerInch / float64(dpi))
		}
	}
	if hasText {
		score += scoreTypeSize(medianText * 72 / float64(dpi))
	}
	return score
}

// scoreDimension rates a label edge length in millimeters.
func scoreDimension(mm float64) int {
	switch {
	case mm > 600:
		return -5
	case mm >= 20 && mm <= 160:
		return 3
	case mm > 160 && mm <= 260:
		return 1
	default:
		return -2
	}
}

// scoreTypeSize rates a text height in points.
func scoreTypeSize(pt float64) int {
	switch {
	case pt >= 4 && pt <= 72:
		return 2
	case pt > 150:
		return -3
	default:
		return 0
	}
}

func medianOf(values []int) (float64, bool) {
	sorted := make([]int, 0, len(values))
	for _, v := range values {
		if v > 0 {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return 0, false
	}
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return float64(sorted[mid-1]+sorted[mid]) / 2, true
	}
	return float64(sorted[mid]), true
}
