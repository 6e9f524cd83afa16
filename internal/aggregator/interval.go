package aggregator

import "sort"

// Interval is an inclusive range of account numbers.
type Interval struct {
	Lo, Hi int
}

// Contains reports whether n lies in the interval.
func (i Interval) Contains(n int) bool {
	return n >= i.Lo && n <= i.Hi
}

type segment struct {
	lo, hi int
	weight int
}

// IntervalSet is a sorted set of disjoint segments built from possibly
// overlapping intervals. Each segment remembers how many source intervals
// cover it, so an account covered twice is weighted twice.
type IntervalSet struct {
	segs []segment
}

// NewIntervalSet builds a set from the given intervals. Empty intervals
// (Lo > Hi) are ignored.
func NewIntervalSet(intervals ...Interval) IntervalSet {
	type event struct {
		at    int
		delta int
	}
	events := make([]event, 0, 2*len(intervals))
	for _, iv := range intervals {
		if iv.Lo > iv.Hi {
			continue
		}
		events = append(events, event{iv.Lo, 1}, event{iv.Hi + 1, -1})
	}
	if len(events) == 0 {
		return IntervalSet{}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].at < events[j].at })

	var segs []segment
	weight := 0
	for i := 0; i < len(events); {
		at := events[i].at
		for i < len(events) && events[i].at == at {
			weight += events[i].delta
			i++
		}
		if weight <= 0 || i == len(events) {
			continue
		}
		next := events[i].at
		if n := len(segs); n > 0 && segs[n-1].weight == weight && segs[n-1].hi+1 == at {
			segs[n-1].hi = next - 1
			continue
		}
		segs = append(segs, segment{lo: at, hi: next - 1, weight: weight})
	}
	return IntervalSet{segs: segs}
}

// Weight returns how many source intervals contain n.
func (s IntervalSet) Weight(n int) int {
	i := sort.Search(len(s.segs), func(i int) bool { return s.segs[i].hi >= n })
	if i < len(s.segs) && s.segs[i].lo <= n {
		return s.segs[i].weight
	}
	return 0
}

// Contains reports whether any source interval contains n.
func (s IntervalSet) Contains(n int) bool {
	return s.Weight(n) > 0
}

// Empty reports whether the set covers nothing.
func (s IntervalSet) Empty() bool {
	return len(s.segs) == 0
}
