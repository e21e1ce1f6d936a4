package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// SampleCEDICT is a small dictionary excerpt in CC-CEDICT format
const SampleCEDICT = `# CC-CEDICT test excerpt
走 走 [zou3] /to walk/to go/
走路 走路 [zou3 lu4] /to walk/to go on foot/
學生 学生 [xue2 sheng5] /student/schoolchild/
說 说 [shuo1] /to speak/to say/
說 说 [shui4] /to persuade/
`

// SampleHSK lists HSK levels for the sample words
const SampleHSK = `#1
学生
说
#2
走
`

// WriteDictionary writes the sample dictionary files to dir on fs
func WriteDictionary(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()

	CreateTestFile(t, fs, filepath.Join(dir, "cedict_ts.u8"), []byte(SampleCEDICT))
	CreateTestFile(t, fs, filepath.Join(dir, "hsk_words.txt"), []byte(SampleHSK))
}
