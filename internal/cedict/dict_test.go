package cedict

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"

	"codeberg.org/snonux/cardcreator/internal/cards"
)

const testDict = `# CC-CEDICT
# test excerpt
走 走 [zou3] /to walk/to go/to move/
走路 走路 [zou3 lu4] /to walk/to go on foot/
說 说 [shuo1] /variant of 說|说[shuo1]/
說 说 [shui4] /to persuade/
說 说 [shuo1] /to speak/to say/
女兒 女儿 [nu:3 er2] /daughter/
`

func writeDict(t *testing.T, fs afero.Fs, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := afero.WriteFile(fs, filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDict(t, fs, "/data", map[string]string{DictFile: testDict})

	d, err := Load(fs, "/data")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if d.Len() != 4 {
		t.Errorf("Len() = %d, want 4", d.Len())
	}

	entry, ok := d.Lookup("走")
	if !ok {
		t.Fatal("走 not found")
	}
	if len(entry.Meanings) != 1 || entry.Meanings[0].Meaning != "to walk/to go/to move" {
		t.Errorf("走 meanings = %+v", entry.Meanings)
	}
}

func TestLoad_VariantsSortLast(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDict(t, fs, "/data", map[string]string{DictFile: testDict})

	d, err := Load(fs, "/data")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	entry, _ := d.Lookup("说")
	var got []string
	for _, m := range entry.Meanings {
		got = append(got, m.Meaning)
	}
	want := []string{"to persuade", "to speak/to say", "variant of 說|说[shuo1]"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("meanings = %v, want %v", got, want)
	}
}

func TestLookup_Traditional(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDict(t, fs, "/data", map[string]string{DictFile: testDict})

	d, err := Load(fs, "/data")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	entry, ok := d.Lookup("女兒")
	if !ok || entry.Word != "女儿" {
		t.Errorf("Lookup(女兒) = %+v, %v", entry, ok)
	}
}

func TestDefinitions(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDict(t, fs, "/data", map[string]string{DictFile: testDict})

	d, err := Load(fs, "/data")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	defs, err := d.Definitions("走路")
	if err != nil {
		t.Fatalf("Definitions() error = %v", err)
	}
	want := []cards.Definition{{Pronunciation: "zǒu lù", Meaning: "to walk/to go on foot"}}
	if !reflect.DeepEqual(defs, want) {
		t.Errorf("Definitions() = %+v, want %+v", defs, want)
	}

	if _, err := d.Definitions("飞机"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Definitions(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestLoad_HSKWords(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDict(t, fs, "/data", map[string]string{
		DictFile:     testDict,
		HSKWordsFile: "# HSK 1\n说\n女儿\n# HSK 2\n走\n",
	})

	d, err := Load(fs, "/data")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := map[string]int{"说": 1, "女儿": 1, "走": 2, "走路": 0}
	for word, level := range tests {
		entry, _ := d.Lookup(word)
		if entry.HSKLevel != level {
			t.Errorf("%s HSKLevel = %d, want %d", word, entry.HSKLevel, level)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := Load(fs, "/missing"); err == nil {
		t.Error("Expected error for missing dictionary")
	}

	writeDict(t, fs, "/bad", map[string]string{DictFile: "this is not cedict\n"})
	if _, err := Load(fs, "/bad"); err == nil {
		t.Error("Expected error for malformed line")
	}
}
