package scroll

// Align returns a row offset that keeps the selected row away from the
// viewport edges. It nudges just enough to keep a small buffer, the way a
// scrolloff setting does.
func Align(sel, off, h, total int) int {
	if h <= 0 || total <= 0 {
		return 0
	}
	sel = clamp(sel, 0, total-1)
	if h > total {
		h = total
	}
	maxOff := total - h
	off = clamp(off, 0, maxOff)

	if sel >= total-1 {
		return maxOff
	}

	buf := max(h/4, 1)
	top := off + buf
	bot := off + h - 1 - buf
	if sel < top {
		return clamp(sel-buf, 0, maxOff)
	}
	if sel > bot {
		return clamp(off+sel-bot, 0, maxOff)
	}
	return off
}

// Reveal returns a row offset that shows the span [start,end] with a small
// buffer above and below when possible. A span that is already comfortably
// visible keeps the current offset.
func Reveal(start, end, off, h, total int) int {
	if h <= 0 || total <= 0 {
		return 0
	}
	start = max(start, 0)
	end = clamp(end, start, total-1)
	if h > total {
		h = total
	}
	maxOff := max(total-h, 0)
	off = clamp(off, 0, maxOff)

	buf := max(h/5, 1)
	if start >= off+buf && end <= off+h-1-buf {
		return off
	}

	offset := clamp(start-buf, 0, maxOff)
	if need := end - h + 1 + buf; offset < need {
		offset = clamp(need, 0, maxOff)
	}
	return offset
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
