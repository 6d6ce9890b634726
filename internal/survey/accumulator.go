package survey

import "sort"

// Tally is the aggregate of one category.
type Tally struct {
	Key    string
	Count  int
	Weight float64
}

// Accumulator is an ordered category map that remembers first-seen order.
type Accumulator struct {
	index map[string]int
	items []Tally
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{index: make(map[string]int)}
}

// Add counts one answer of weight w under key.
func (a *Accumulator) Add(key string, w float64) {
	i, ok := a.index[key]
	if !ok {
		i = len(a.items)
		a.index[key] = i
		a.items = append(a.items, Tally{Key: key})
	}
	a.items[i].Count++
	a.items[i].Weight += w
}

// Remove drops key if present, keeping the order of the rest.
func (a *Accumulator) Remove(key string) {
	i, ok := a.index[key]
	if !ok {
		return
	}
	a.items = append(a.items[:i], a.items[i+1:]...)
	delete(a.index, key)
	for j := i; j < len(a.items); j++ {
		a.index[a.items[j].Key] = j
	}
}

// Get returns the tally for key.
func (a *Accumulator) Get(key string) (Tally, bool) {
	i, ok := a.index[key]
	if !ok {
		return Tally{}, false
	}
	return a.items[i], true
}

// Len returns the number of categories.
func (a *Accumulator) Len() int { return len(a.items) }

// Items returns the tallies in first-seen order.
func (a *Accumulator) Items() []Tally {
	out := make([]Tally, len(a.items))
	copy(out, a.items)
	return out
}

// ByWeight returns the tallies by descending weight; ties keep first-seen order.
func (a *Accumulator) ByWeight() []Tally {
	out := a.Items()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}
