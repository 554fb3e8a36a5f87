package internal

import "sync"

// DedupSet remembers the transcript texts already written in a session
type DedupSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDedupSet creates an empty DedupSet, optionally seeded with known texts
func NewDedupSet(texts ...string) *DedupSet {
	d := &DedupSet{seen: make(map[string]struct{}, len(texts))}
	for _, t := range texts {
		d.seen[t] = struct{}{}
	}
	return d
}

// Contains reports whether text has already been emitted
func (d *DedupSet) Contains(text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[text]
	return ok
}

// Add records texts as emitted
func (d *DedupSet) Add(texts ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range texts {
		d.seen[t] = struct{}{}
	}
}

// Len returns the number of distinct texts recorded
func (d *DedupSet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Reset forgets every recorded text
func (d *DedupSet) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = make(map[string]struct{})
}

// Filter returns the lines whose text is neither in the set nor repeated
// earlier in lines. The set itself is not modified.
func (d *DedupSet) Filter(lines []Line) []Line {
	d.mu.Lock()
	defer d.mu.Unlock()

	batch := make(map[string]struct{}, len(lines))
	var fresh []Line
	for _, l := range lines {
		if _, ok := d.seen[l.Text]; ok {
			continue
		}
		if _, ok := batch[l.Text]; ok {
			continue
		}
		batch[l.Text] = struct{}{}
		fresh = append(fresh, l)
	}
	return fresh
}
