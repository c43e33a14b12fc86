package layout

// fit scales widths proportionally so they sum to total. Entries that would
// fall under MinWidthPercent are pinned there and the shortfall is taken
// from the remaining entries, repeating until nothing else drops below the
// floor. Callers keep total >= MinWidthPercent*len(widths).
func fit(widths []float64, total float64) []float64 {
	out := make([]float64, len(widths))
	if len(widths) == 0 {
		return out
	}
	pinned := make([]bool, len(widths))
	remaining := total
	for {
		var sum float64
		free := 0
		for i, w := range widths {
			if !pinned[i] {
				sum += w
				free++
			}
		}
		if free == 0 {
			return out
		}
		for i, w := range widths {
			if pinned[i] {
				continue
			}
			if sum > 0 {
				out[i] = remaining * w / sum
			} else {
				out[i] = remaining / float64(free)
			}
		}
		changed := false
		for i := range widths {
			if !pinned[i] && out[i] < MinWidthPercent {
				out[i] = MinWidthPercent
				pinned[i] = true
				remaining -= MinWidthPercent
				changed = true
			}
		}
		if !changed {
			return out
		}
	}
}

// maxWidthBeside is the widest a widget may be while n row-mates keep
// their minimum width.
func maxWidthBeside(n int) float64 {
	return MaxWidthPercent - MinWidthPercent*float64(n)
}
