/*
Package zhuyin models the Bopomofo symbol alphabet and the syllable
composer state machine.

Symbols are classified as initials, medials, finals or tone marks. A
syllable accepts at most one symbol per class, in class order, and is
complete once a tone is assigned. The composer enforces the ordering and
the basic phonotactic constraints of Mandarin (ㄐㄑㄒ take only ㄧ/ㄩ,
the ㄓㄔㄕㄖㄗㄘㄙ group never takes ㄩ).
*/
package zhuyin

import "errors"

// Class identifies the positional role of a symbol inside a syllable.
type Class int

const (
	ClassUnknown Class = iota
	ClassInitial
	ClassMedial
	ClassFinal
	ClassTone
)

func (c Class) String() string {
	switch c {
	case ClassInitial:
		return "initial"
	case ClassMedial:
		return "medial"
	case ClassFinal:
		return "final"
	case ClassTone:
		return "tone"
	default:
		return "unknown"
	}
}

// ErrInvalidSymbol is returned for runes outside the Bopomofo alphabet.
var ErrInvalidSymbol = errors.New("zhuyin: not a bopomofo symbol")

const (
	initials = "ㄅㄆㄇㄈㄉㄊㄋㄌㄍㄎㄏㄐㄑㄒㄓㄔㄕㄖㄗㄘㄙ"
	medials  = "ㄧㄨㄩ"
	finals   = "ㄚㄛㄜㄝㄞㄟㄠㄡㄢㄣㄤㄥㄦ"
)

// NeutralTone is assigned when a syllable is completed without an
// explicit tone mark (the unmarked first tone).
const NeutralTone = 1

// toneMarks maps each tone mark to its tone number 1..5.
var toneMarks = map[rune]int{
	'ˉ': 1,
	'ˊ': 2,
	'ˇ': 3,
	'ˋ': 4,
	'˙': 5,
}

var classes = buildClassTable()

func buildClassTable() map[rune]Class {
	t := make(map[rune]Class, len(initials)+len(medials)+len(finals)+len(toneMarks))
	for _, r := range initials {
		t[r] = ClassInitial
	}
	for _, r := range medials {
		t[r] = ClassMedial
	}
	for _, r := range finals {
		t[r] = ClassFinal
	}
	for r := range toneMarks {
		t[r] = ClassTone
	}
	return t
}

// ClassOf reports the class of a symbol, or ErrInvalidSymbol for runes
// outside the alphabet.
func ClassOf(sym rune) (Class, error) {
	c, ok := classes[sym]
	if !ok {
		return ClassUnknown, ErrInvalidSymbol
	}
	return c, nil
}

// ToneOf reports the tone number 1..5 for a tone mark, or 0 when the
// rune is not a tone mark.
func ToneOf(sym rune) int {
	return toneMarks[sym]
}

// ToneMark returns the display mark for a tone number. Tone 1 renders
// empty, matching conventional Bopomofo spelling.
func ToneMark(tone int) string {
	switch tone {
	case 2:
		return "ˊ"
	case 3:
		return "ˇ"
	case 4:
		return "ˋ"
	case 5:
		return "˙"
	default:
		return ""
	}
}

// jqx initials combine only with the medials ㄧ and ㄩ.
func isJQX(r rune) bool {
	return r == 'ㄐ' || r == 'ㄑ' || r == 'ㄒ'
}

// The retroflex/dental sibilants stand alone as full syllables and never
// take the medial ㄩ.
func isSibilant(r rune) bool {
	switch r {
	case 'ㄓ', 'ㄔ', 'ㄕ', 'ㄖ', 'ㄗ', 'ㄘ', 'ㄙ':
		return true
	}
	return false
}
