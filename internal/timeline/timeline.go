// Package timeline derives cut boundaries and chunk intervals from a track
// duration and a set of user-placed breakpoints. It is purely computational:
// no I/O, no knowledge of storage or the processing service.
package timeline

import (
	"encoding/json"
	"sort"
)

// Chunk is one contiguous interval between two consecutive boundaries.
type Chunk struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// Boundaries returns the ordered, deduplicated boundary sequence
// {0} ∪ breakpoints ∪ {duration}. Breakpoints are compared by exact
// equality; duplicates collapse to a single boundary.
func Boundaries(duration float64, breakpoints []float64) []float64 {
	boundaries := make([]float64, 0, len(breakpoints)+2)
	boundaries = append(boundaries, 0, duration)
	boundaries = append(boundaries, breakpoints...)
	sort.Float64s(boundaries)

	// Collapse exact duplicates in place.
	out := boundaries[:1]
	for _, b := range boundaries[1:] {
		if b != out[len(out)-1] {
			out = append(out, b)
		}
	}
	return out
}

// Chunks emits one chunk per consecutive boundary pair. The result
// partitions [0, duration]: chunks[0].Start == 0, the last chunk ends at
// duration, and each chunk starts where the previous one ended. A track
// with no breakpoints yields a single chunk spanning the full duration.
func Chunks(duration float64, breakpoints []float64) []Chunk {
	boundaries := Boundaries(duration, breakpoints)
	chunks := make([]Chunk, 0, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		chunks = append(chunks, Chunk{
			Start:    boundaries[i],
			End:      boundaries[i+1],
			Duration: boundaries[i+1] - boundaries[i],
		})
	}
	return chunks
}

// Cutlist is the breakpoint set for one track: unique times, kept in
// ascending order. The zero value is an empty cutlist ready for use.
// Cutlist does not validate times against the track duration; callers
// decide what range they accept before inserting.
type Cutlist struct {
	times []float64
}

// NewCutlist builds a cutlist from the given times, discarding duplicates.
func NewCutlist(times ...float64) Cutlist {
	var c Cutlist
	for _, t := range times {
		c.Add(t)
	}
	return c
}

// Add inserts a breakpoint and reports whether the set changed. Adding a
// time that is already present (exact equality) is a no-op.
func (c *Cutlist) Add(t float64) bool {
	i := sort.SearchFloat64s(c.times, t)
	if i < len(c.times) && c.times[i] == t {
		return false
	}
	c.times = append(c.times, 0)
	copy(c.times[i+1:], c.times[i:])
	c.times[i] = t
	return true
}

// Remove deletes a breakpoint by exact value and reports whether the set
// changed. Removing an absent time is a no-op.
func (c *Cutlist) Remove(t float64) bool {
	i := sort.SearchFloat64s(c.times, t)
	if i >= len(c.times) || c.times[i] != t {
		return false
	}
	c.times = append(c.times[:i], c.times[i+1:]...)
	return true
}

// EvenSplit replaces the entire set with n evenly spaced breakpoints at
// duration/(n+1)*k for k=1..n. The replacement is a single assignment, so
// observers never see old and new points mixed. n < 1 clears the set.
func (c *Cutlist) EvenSplit(duration float64, n int) {
	if n < 1 {
		c.times = nil
		return
	}
	step := duration / float64(n+1)
	times := make([]float64, n)
	for k := 1; k <= n; k++ {
		times[k-1] = step * float64(k)
	}
	c.times = times
}

// Times returns the breakpoints in ascending order. The slice is a copy;
// mutating it does not affect the cutlist.
func (c *Cutlist) Times() []float64 {
	out := make([]float64, len(c.times))
	copy(out, c.times)
	return out
}

// Clone returns an independent copy of the cutlist.
func (c *Cutlist) Clone() Cutlist {
	return Cutlist{times: c.Times()}
}

// Len returns the number of breakpoints.
func (c *Cutlist) Len() int {
	return len(c.times)
}

// Contains reports whether t is present by exact equality.
func (c *Cutlist) Contains(t float64) bool {
	i := sort.SearchFloat64s(c.times, t)
	return i < len(c.times) && c.times[i] == t
}

// Chunks derives the chunk list implied by this cutlist over the given
// duration.
func (c *Cutlist) Chunks(duration float64) []Chunk {
	return Chunks(duration, c.times)
}

// MarshalJSON encodes the cutlist as a plain JSON array, never null.
func (c Cutlist) MarshalJSON() ([]byte, error) {
	if c.times == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.times)
}

// UnmarshalJSON decodes a JSON array of times, restoring order and
// uniqueness regardless of the input's shape.
func (c *Cutlist) UnmarshalJSON(data []byte) error {
	var times []float64
	if err := json.Unmarshal(data, &times); err != nil {
		return err
	}
	c.times = nil
	for _, t := range times {
		c.Add(t)
	}
	return nil
}
