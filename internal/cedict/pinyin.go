package cedict

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Combining marks for tones 1-4. Tone 5 (neutral) has none.
var toneMarks = map[rune]string{
	'1': "\u0304",
	'2': "\u0301",
	'3': "\u030c",
	'4': "\u0300",
}

// Order in which vowels receive the tone mark when no "iu" is present
var markOrder = []rune{'a', 'A', 'o', 'O', 'e', 'E', 'i', 'I', 'u', 'U', 'ü', 'Ü'}

// Syllables without a proper pronunciation, kept as they are
var verbatim = map[string]bool{"xx5": true, "m2": true, "m4": true}

// PinyinDiacritic converts numbered pinyin ("zou3 lu4") into pinyin with
// tone marks ("zǒu lù"). The result is NFC normalized.
func PinyinDiacritic(pinyin string) string {
	var result []string
	for _, syl := range strings.Fields(pinyin) {
		if verbatim[syl] {
			result = append(result, syl)
			continue
		}

		// Erhua: the retroflex r belongs to the previous syllable
		if syl == "r5" {
			if len(result) > 0 {
				result[len(result)-1] += "r"
			} else {
				result = append(result, "r")
			}
			continue
		}

		syl = strings.Replace(syl, "u:", "ü", 1)
		syl = strings.Replace(syl, "U:", "Ü", 1)
		result = append(result, markSyllable(syl))
	}
	return norm.NFC.String(strings.Join(result, " "))
}

// markSyllable moves the trailing tone number of one syllable onto its vowel
func markSyllable(syl string) string {
	runes := []rune(syl)
	if len(runes) == 0 {
		return syl
	}
	last := runes[len(runes)-1]
	if last < '0' || last > '9' {
		return syl
	}

	i := strings.Index(syl, "iu")
	if i >= 0 {
		// byte offset of "i" to rune offset of "u"
		i = len([]rune(syl[:i])) + 1
	} else {
		i = firstVowel(runes[:len(runes)-1])
	}
	if i < 0 {
		return syl
	}

	var b strings.Builder
	b.WriteString(string(runes[:i+1]))
	b.WriteString(toneMarks[last])
	b.WriteString(string(runes[i+1 : len(runes)-1]))
	return b.String()
}

func firstVowel(runes []rune) int {
	for _, v := range markOrder {
		for i, r := range runes {
			if r == v {
				return i
			}
		}
	}
	return -1
}
