package upload

import "sync"

// Progress is a snapshot of bytes sent for one upload.
type Progress struct {
	Transferred int64 `json:"transferred"`
	Total       int64 `json:"total"`
}

// Percent returns Transferred/Total*100. See Percentage.
func (p Progress) Percent() float64 {
	return Percentage(p.Transferred, p.Total)
}

// Percentage maps transferred bytes to a 0-100 figure. The result is not clamped,
// so a transport that over-reports shows more than 100. A zero total yields 0.
func Percentage(transferred, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(transferred) / float64(total) * 100
}

// reporter forwards progress to a callback and drops regressions so observers
// only ever see a non-decreasing sequence.
type reporter struct {
	mu   sync.Mutex
	last int64
	sent bool
	fn   func(Progress)
}

func (r *reporter) report(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent && p.Transferred < r.last {
		return
	}
	r.last = p.Transferred
	r.sent = true
	if r.fn != nil {
		r.fn(p)
	}
}

func (r *reporter) lastTransferred() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
