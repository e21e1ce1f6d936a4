package cards

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var walk = Definition{Pronunciation: "zǒu", Meaning: "to walk, to leave"}

func TestAssemble_Scenario(t *testing.T) {
	records, err := Assemble("走",
		[]Definition{walk}, SelectionMask{true},
		[]Example{{SourceText: "我走了", GlossText: "I'm leaving"}}, SelectionMask{true})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	want := []Record{{
		FrontText:       "我___了",
		FrontHint:       "",
		BackWord:        "走",
		FullSentence:    "我走了",
		InfoHTML:        "(zǒu) to walk, to leave",
		IsPrimaryOfPair: true,
	}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_NoSelection(t *testing.T) {
	defs := []Definition{walk}
	examples := []Example{{SourceText: "我走了", GlossText: "I'm leaving"}}

	tests := []struct {
		name    string
		defMask SelectionMask
		exMask  SelectionMask
	}{
		{"no example selected", SelectionMask{true}, SelectionMask{false}},
		{"no definition selected", SelectionMask{false}, SelectionMask{true}},
		{"empty masks", nil, nil},
		{"empty definition mask", SelectionMask{}, SelectionMask{true}},
		{"mask longer than list but unset", SelectionMask{true}, SelectionMask{false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Assemble("走", defs, tt.defMask, examples, tt.exMask)
			if !errors.Is(err, ErrNoSelection) {
				t.Errorf("Assemble() error = %v, want ErrNoSelection", err)
			}
			if records != nil {
				t.Errorf("Assemble() returned %d records on error", len(records))
			}
		})
	}
}

func TestAssemble_WordNotInSentence(t *testing.T) {
	records, err := Assemble("走",
		[]Definition{walk}, SelectionMask{true},
		[]Example{{SourceText: "他好吗", GlossText: "How is he?"}}, SelectionMask{true})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if records[0].FrontText != "他好吗" {
		t.Errorf("FrontText = %q, want sentence unchanged", records[0].FrontText)
	}
}

func TestAssemble_InfoKeepsOrderAcrossGaps(t *testing.T) {
	defs := []Definition{
		{Pronunciation: "zǒu", Meaning: "to walk"},
		{Pronunciation: "zǒu", Meaning: "to run"},
		{Pronunciation: "zǒu", Meaning: "to leave"},
	}
	records, err := Assemble("走",
		defs, SelectionMask{true, false, true},
		[]Example{{SourceText: "走吧"}}, SelectionMask{true})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	want := "(zǒu) to walk<br>(zǒu) to leave"
	if records[0].InfoHTML != want {
		t.Errorf("InfoHTML = %q, want %q", records[0].InfoHTML, want)
	}
}

func TestAssemble_RecordCountAndPrimary(t *testing.T) {
	examples := []Example{
		{SourceText: "我走了"},
		{SourceText: "走路"},
		{SourceText: "他走得很快"},
		{SourceText: "慢慢走"},
	}

	tests := []struct {
		name   string
		exMask SelectionMask
	}{
		{"one", SelectionMask{false, true}},
		{"two with gap", SelectionMask{true, false, true}},
		{"all", SelectionMask{true, true, true, true}},
		{"mask longer than list", SelectionMask{true, true, true, true, true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Assemble("走", []Definition{walk}, SelectionMask{true}, examples, tt.exMask)
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}

			want := tt.exMask.Resize(len(examples)).Count()
			if len(records) != want {
				t.Fatalf("len(records) = %d, want %d", len(records), want)
			}

			primaries := 0
			for i, r := range records {
				if r.IsPrimaryOfPair {
					primaries++
					if i != 0 {
						t.Errorf("record %d is primary, want only record 0", i)
					}
				}
				if r.BackWord != "走" {
					t.Errorf("record %d BackWord = %q", i, r.BackWord)
				}
				if r.FrontHint != "" {
					t.Errorf("record %d FrontHint = %q, want empty", i, r.FrontHint)
				}
			}
			if primaries != 1 {
				t.Errorf("found %d primary records, want 1", primaries)
			}
		})
	}
}

func TestAssemble_PreservesExampleOrder(t *testing.T) {
	examples := []Example{{SourceText: "一走"}, {SourceText: "二走"}, {SourceText: "三走"}}
	records, err := Assemble("走", []Definition{walk}, SelectionMask{true}, examples, SelectionMask{true, false, true})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	got := []string{records[0].FullSentence, records[1].FullSentence}
	want := []string{"一走", "三走"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sentences = %v, want %v", got, want)
	}
	if records[1].FrontText != "三___" {
		t.Errorf("FrontText = %q, want %q", records[1].FrontText, "三___")
	}
}

func TestAssemble_MissingDefinitionFields(t *testing.T) {
	defs := []Definition{{}, {Meaning: "to go"}}
	records, err := Assemble("走", defs, SelectionMask{true, true}, []Example{{SourceText: "走"}}, SelectionMask{true})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	want := "() <br>() to go"
	if records[0].InfoHTML != want {
		t.Errorf("InfoHTML = %q, want %q", records[0].InfoHTML, want)
	}
}

func TestAssemble_DoesNotModifyInputs(t *testing.T) {
	defs := []Definition{walk}
	examples := []Example{{SourceText: "我走了", GlossText: "I'm leaving"}}
	defMask := SelectionMask{true}
	exMask := SelectionMask{true}

	if _, err := Assemble("走", defs, defMask, examples, exMask); err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if examples[0].SourceText != "我走了" || defs[0] != walk {
		t.Error("Assemble modified its inputs")
	}
}

func TestAssembleSelected(t *testing.T) {
	defs := []Definition{walk, {Pronunciation: "zou3", Meaning: "to run"}}
	examples := []Example{{SourceText: "我走了"}, {SourceText: "走路"}}

	records, err := AssembleSelected("走", defs, NewSelection(1), examples, NewSelection(1, 5))
	if err != nil {
		t.Fatalf("AssembleSelected() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].FullSentence != "走路" {
		t.Errorf("FullSentence = %q, want 走路", records[0].FullSentence)
	}

	_, err = AssembleSelected("走", defs, NewSelection(), examples, NewSelection(0))
	if !errors.Is(err, ErrNoSelection) {
		t.Errorf("AssembleSelected() error = %v, want ErrNoSelection", err)
	}
}

func TestBlankOut(t *testing.T) {
	tests := []struct {
		sentence string
		word     string
		want     string
	}{
		{"我走了", "走", "我___了"},
		{"走走走", "走", "___走走"},
		{"他好吗", "走", "他好吗"},
		{"我们走路吧", "走路", "我们___吧"},
		{"abc", "", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.sentence+"/"+tt.word, func(t *testing.T) {
			if got := BlankOut(tt.sentence, tt.word); got != tt.want {
				t.Errorf("BlankOut(%q, %q) = %q, want %q", tt.sentence, tt.word, got, tt.want)
			}
		})
	}
}

func TestValidateWord(t *testing.T) {
	if _, err := ValidateWord("   "); !errors.Is(err, ErrEmptyWord) {
		t.Errorf("ValidateWord(blank) error = %v, want ErrEmptyWord", err)
	}
	word, err := ValidateWord(" 走 ")
	if err != nil || word != "走" {
		t.Errorf("ValidateWord() = %q, %v", word, err)
	}
}
