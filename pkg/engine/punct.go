package engine

// fullWidthPunct maps ASCII punctuation onto the full-width forms used
// in Traditional Chinese text.
var fullWidthPunct = map[rune]string{
	',':  "，",
	'.':  "。",
	'?':  "？",
	'!':  "！",
	':':  "：",
	';':  "；",
	'(':  "（",
	')':  "）",
	'[':  "「",
	']':  "」",
	'<':  "《",
	'>':  "》",
	'-':  "─",
	'~':  "～",
	'\'': "、",
}

// FullWidth returns the full-width form of an ASCII punctuation rune,
// or the rune itself when no mapping exists.
func FullWidth(r rune) string {
	if fw, ok := fullWidthPunct[r]; ok {
		return fw
	}
	return string(r)
}
