// Package cedict loads the CC-CEDICT Chinese-English dictionary and turns
// its numbered pinyin into pinyin with tone marks.
package cedict
