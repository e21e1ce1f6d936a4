package cards

import "strings"

// Assemble builds one flashcard per selected example. The info field of
// every card lists the selected definitions in their original order and the
// first card is marked as the primary of its pair.
//
// Either selection being empty yields ErrNoSelection and no records.
func Assemble(word string, defs []Definition, defMask SelectionMask, examples []Example, exMask SelectionMask) ([]Record, error) {
	selectedDefs := filter(defs, defMask)
	selectedExamples := filter(examples, exMask)
	if len(selectedDefs) == 0 || len(selectedExamples) == 0 {
		return nil, ErrNoSelection
	}

	info := FormatInfo(selectedDefs)

	records := make([]Record, 0, len(selectedExamples))
	for _, ex := range selectedExamples {
		records = append(records, Record{
			FrontText:    BlankOut(ex.SourceText, word),
			FrontHint:    "",
			BackWord:     word,
			FullSentence: ex.SourceText,
			InfoHTML:     info,
		})
	}

	// The first card doubles as the back reference for the pair.
	records[0].IsPrimaryOfPair = true

	return records, nil
}

// AssembleSelected is Assemble driven by index sets instead of masks
func AssembleSelected(word string, defs []Definition, defSel Selection, examples []Example, exSel Selection) ([]Record, error) {
	return Assemble(word, defs, defSel.Mask(len(defs)), examples, exSel.Mask(len(examples)))
}

// FormatInfo renders definitions as "(pronunciation) meaning" joined by <br>
func FormatInfo(defs []Definition) string {
	parts := make([]string, 0, len(defs))
	for _, d := range defs {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, InfoSeparator)
}

// BlankOut replaces the first occurrence of word in sentence with Blank.
// The sentence is returned as is when word does not occur in it.
func BlankOut(sentence, word string) string {
	if word == "" {
		return sentence
	}
	return strings.Replace(sentence, word, Blank, 1)
}

func filter[T any](items []T, mask SelectionMask) []T {
	var out []T
	for i, item := range items {
		if mask.Selected(i) {
			out = append(out, item)
		}
	}
	return out
}
