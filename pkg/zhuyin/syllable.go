package zhuyin

import "strings"

// Syllable is one phonetic unit: optional initial, optional medial,
// optional final, and a tone. Tone 0 means the syllable is still being
// composed.
type Syllable struct {
	Initial rune
	Medial  rune
	Final   rune
	Tone    int
}

// Complete reports whether a tone has been assigned.
func (s Syllable) Complete() bool {
	return s.Tone != 0
}

// Empty reports whether no symbol has been accepted yet.
func (s Syllable) Empty() bool {
	return s.Initial == 0 && s.Medial == 0 && s.Final == 0 && s.Tone == 0
}

func (s Syllable) symbols() string {
	var b strings.Builder
	if s.Initial != 0 {
		b.WriteRune(s.Initial)
	}
	if s.Medial != 0 {
		b.WriteRune(s.Medial)
	}
	if s.Final != 0 {
		b.WriteRune(s.Final)
	}
	return b.String()
}

// Key is the dictionary lookup key: the symbols in class order followed
// by the tone digit, e.g. "ㄊㄞ2". Incomplete syllables have no key.
func (s Syllable) Key() string {
	if !s.Complete() {
		return ""
	}
	return s.symbols() + string(rune('0'+s.Tone))
}

// TonelessKey is the key without the tone digit, used for fuzzy-tone and
// partial (pre-tone) matching.
func (s Syllable) TonelessKey() string {
	return s.symbols()
}

// String renders the syllable for display, with the conventional tone
// mark instead of a digit.
func (s Syllable) String() string {
	return s.symbols() + ToneMark(s.Tone)
}

// SequenceKey joins completed syllable keys with single spaces, the form
// phrase entries are keyed under.
func SequenceKey(syls []Syllable) string {
	keys := make([]string, len(syls))
	for i, s := range syls {
		keys[i] = s.Key()
	}
	return strings.Join(keys, " ")
}

// TonelessSequenceKey joins toneless keys with single spaces.
func TonelessSequenceKey(syls []Syllable) string {
	keys := make([]string, len(syls))
	for i, s := range syls {
		keys[i] = s.TonelessKey()
	}
	return strings.Join(keys, " ")
}

// StripTones removes tone digits from a sequence key, mapping a toned
// key onto its toneless form.
func StripTones(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if r >= '1' && r <= '5' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
