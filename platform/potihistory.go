package platform

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/gammazero/deque"
	"golang.org/x/exp/maps"
)

const maxPotiHistory = 500

type potiStats struct {
	min    int
	max    int
	mean   float64
	stdDev float64
}

// potiHistory keeps the most recent raw readings per poti.
type potiHistory struct {
	mu     sync.Mutex
	names  map[int]string
	values map[string]*deque.Deque[int]
}

// newPotiHistory takes a mapping from select pin to poti name.
func newPotiHistory(names map[int]string) *potiHistory {
	h := &potiHistory{
		names:  names,
		values: make(map[string]*deque.Deque[int], len(names)),
	}
	for _, name := range names {
		q := new(deque.Deque[int])
		q.Grow(maxPotiHistory)
		h.values[name] = q
	}
	return h
}

// record is safe for concurrent use. Readings of unknown pins are
// ignored.
func (h *potiHistory) record(selectPin int, value int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	name, found := h.names[selectPin]
	if !found {
		return
	}
	q := h.values[name]
	if q.Len() == maxPotiHistory {
		q.PopFront()
	}
	q.PushBack(value)
}

func (h *potiHistory) stats(name string) potiStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	q, found := h.values[name]
	if !found {
		return potiStats{}
	}
	data := make([]int, q.Len())
	for i := range q.Len() {
		data[i] = q.At(i)
	}
	return calculateStats(data)
}

// render produces one line per poti, sorted by name.
func (h *potiHistory) render(current func(name string) int) string {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("[yellow]%-12s %6s  %-18s %7s[white]\n", " Poti", "Value", "[min|mean|max]", "StdDev"))
	names := maps.Keys(h.values)
	slices.Sort(names)
	for _, name := range names {
		st := h.stats(name)
		buf.WriteString(fmt.Sprintf(" [blue]%-11s[-] %6d  [%4d|%4.0f|%4d]  %7.1f\n",
			name, current(name), st.min, math.Round(st.mean), st.max, st.stdDev))
	}
	return buf.String()
}

func calculateStats(data []int) potiStats {
	if len(data) == 0 {
		return potiStats{}
	}

	var sum int
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
		sum += v
	}
	mean := float64(sum) / float64(len(data))

	var sumOfSquares float64
	for _, v := range data {
		sumOfSquares += (float64(v) - mean) * (float64(v) - mean)
	}

	return potiStats{
		min:    lo,
		max:    hi,
		mean:   mean,
		stdDev: math.Sqrt(sumOfSquares / float64(len(data))),
	}
}
