package cards

import (
	"sort"
	"strings"
)

// SelectionMask holds one flag per definition or example, aligned by index.
// A missing index counts as not selected.
type SelectionMask []bool

// Selected reports whether index i is selected
func (m SelectionMask) Selected(i int) bool {
	return i >= 0 && i < len(m) && m[i]
}

// Count returns the number of selected entries
func (m SelectionMask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Resize returns a copy of the mask with exactly n entries. Entries past the
// old length are unselected, entries past n are dropped.
func (m SelectionMask) Resize(n int) SelectionMask {
	if n < 0 {
		n = 0
	}
	out := make(SelectionMask, n)
	copy(out, m)
	return out
}

// Indices returns the selected indices in ascending order
func (m SelectionMask) Indices() []int {
	var idx []int
	for i, v := range m {
		if v {
			idx = append(idx, i)
		}
	}
	return idx
}

// MaskFromIndices builds a mask of length n with the given indices set.
// Out of range indices are ignored.
func MaskFromIndices(n int, indices ...int) SelectionMask {
	m := make(SelectionMask, n)
	for _, i := range indices {
		if i >= 0 && i < n {
			m[i] = true
		}
	}
	return m
}

// Selection is a set of selected positions. Unlike a mask it does not need
// to be kept in step with the list it refers to.
type Selection map[int]struct{}

// NewSelection returns a selection containing the given indices
func NewSelection(indices ...int) Selection {
	s := make(Selection, len(indices))
	for _, i := range indices {
		s.Add(i)
	}
	return s
}

// Add selects index i
func (s Selection) Add(i int) {
	if i >= 0 {
		s[i] = struct{}{}
	}
}

// Remove deselects index i
func (s Selection) Remove(i int) {
	delete(s, i)
}

// Toggle flips index i
func (s Selection) Toggle(i int) {
	if s.Has(i) {
		s.Remove(i)
		return
	}
	s.Add(i)
}

// Has reports whether index i is selected
func (s Selection) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the selected indices in ascending order
func (s Selection) Sorted() []int {
	idx := make([]int, 0, len(s))
	for i := range s {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Mask converts the selection into a mask for a list of n entries
func (s Selection) Mask(n int) SelectionMask {
	return MaskFromIndices(n, s.Sorted()...)
}

// AddCustomSentence appends a user typed sentence to the examples and gives
// it a fresh, unselected slot in the mask. The mask is first brought to the
// length of the example list so that positions stay aligned. Blank input
// leaves both unchanged.
func AddCustomSentence(examples []Example, mask SelectionMask, sentence string) ([]Example, SelectionMask) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return examples, mask
	}

	newMask := mask.Resize(len(examples) + 1)
	newExamples := make([]Example, 0, len(examples)+1)
	newExamples = append(newExamples, examples...)
	newExamples = append(newExamples, Example{
		SourceText: sentence,
		GlossText:  UserProvidedGloss,
	})
	return newExamples, newMask
}
