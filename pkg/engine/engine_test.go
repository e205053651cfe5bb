package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/HiDomesticCat/zhuyinserve/pkg/compose"
	"github.com/HiDomesticCat/zhuyinserve/pkg/dictionary"
	"github.com/HiDomesticCat/zhuyinserve/pkg/learning"
)

func testDict() *dictionary.Store {
	d := dictionary.NewStore()
	d.Add("ㄊㄞ2", "台", 80)
	d.Add("ㄊㄞ2", "抬", 40)
	d.Add("ㄊㄞ2", "臺", 10)
	d.Add("ㄊㄞ2 ㄨㄢ1", "台灣", 95)
	d.Add("ㄨㄢ1", "彎", 30)
	d.Add("ㄏㄠ3", "好", 70)
	return d
}

func newTestSession(opts Options) *Session {
	opts.CandidateCount = 9
	return NewSession(testDict(), learning.NewMemory(learning.DefaultParams()), opts, nil)
}

// typeSyllable feeds a symbol string through FeedSymbol, returning the
// last error.
func typeSyllable(t *testing.T, s *Session, syms string) error {
	t.Helper()
	var err error
	for _, r := range syms {
		err = s.FeedSymbol(r)
	}
	return err
}

func candidateTexts(s *Session) []string {
	var out []string
	for _, c := range s.Candidates() {
		out = append(out, c.Text)
	}
	return out
}

func TestSessionBasicLookup(t *testing.T) {
	s := newTestSession(Options{LearningEnabled: true})

	if err := typeSyllable(t, s, "ㄊㄞˊ"); err != nil {
		t.Fatalf("typing ㄊㄞˊ: %v", err)
	}
	got := candidateTexts(s)
	// 台灣 enters through the phrase-continuation prefix.
	want := []string{"台灣", "台", "抬", "臺"}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidates = %v, want %v", got, want)
		}
	}
	if pre := s.Preedit(); pre != "ㄊㄞˊ" {
		t.Errorf("Preedit = %q, want ㄊㄞˊ", pre)
	}
}

func TestSessionSelectCommits(t *testing.T) {
	s := newTestSession(Options{LearningEnabled: true})

	typeSyllable(t, s, "ㄊㄞˊ")
	// 台 is the second candidate behind the 台灣 continuation.
	if err := s.Select(2); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := s.Buffer(); got != "台" {
		t.Errorf("Buffer = %q, want 台", got)
	}
	if s.Composing() {
		t.Error("still composing after selection")
	}
	if len(s.Candidates()) != 0 {
		t.Errorf("candidates not cleared: %v", candidateTexts(s))
	}
}

func TestSessionSelectOutOfRange(t *testing.T) {
	s := newTestSession(Options{})
	typeSyllable(t, s, "ㄊㄞˊ")

	for _, n := range []int{0, -1, 99} {
		if err := s.Select(n); !errors.Is(err, ErrNoSuchCandidate) {
			t.Errorf("Select(%d) = %v, want ErrNoSuchCandidate", n, err)
		}
	}
}

func TestSessionLearningLifts(t *testing.T) {
	s := newTestSession(Options{LearningEnabled: true})

	// Pick the rare 臺 twice; its boost must overtake the static order.
	for i := 0; i < 2; i++ {
		typeSyllable(t, s, "ㄊㄞˊ")
		var idx int
		for j, text := range candidateTexts(s) {
			if text == "臺" {
				idx = j + 1
			}
		}
		if idx == 0 {
			t.Fatal("臺 not among candidates")
		}
		if err := s.Select(idx); err != nil {
			t.Fatal(err)
		}
	}

	typeSyllable(t, s, "ㄊㄞˊ")
	if got := candidateTexts(s); got[0] != "臺" {
		t.Errorf("after learning, candidates = %v, want 臺 first", got)
	}
}

func TestSessionLearningDisabled(t *testing.T) {
	s := newTestSession(Options{LearningEnabled: false})

	for i := 0; i < 3; i++ {
		typeSyllable(t, s, "ㄊㄞˊ")
		if err := s.Select(len(s.Candidates())); err != nil {
			t.Fatal(err)
		}
	}
	typeSyllable(t, s, "ㄊㄞˊ")
	if got := candidateTexts(s); got[0] != "台灣" || got[1] != "台" {
		t.Errorf("candidates = %v, static order expected with learning off", got)
	}
}

func TestSessionPartialNarrowsPhrases(t *testing.T) {
	s := newTestSession(Options{})

	typeSyllable(t, s, "ㄊㄞˊ")
	// An open partial restricts matches to continuations it prefixes.
	if err := typeSyllable(t, s, "ㄨ"); err != nil {
		t.Fatalf("typing partial: %v", err)
	}
	got := candidateTexts(s)
	if len(got) != 1 || got[0] != "台灣" {
		t.Errorf("candidates = %v, want [台灣]", got)
	}
	if pre := s.Preedit(); pre != "ㄊㄞˊㄨ" {
		t.Errorf("Preedit = %q, want ㄊㄞˊㄨ", pre)
	}
}

func TestSessionNoCandidates(t *testing.T) {
	s := newTestSession(Options{})

	if err := typeSyllable(t, s, "ㄇㄚˉ"); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("err = %v, want ErrNoCandidates", err)
	}
	// The typed syllable survives so the user can correct it.
	if pre := s.Preedit(); pre != "ㄇㄚ" {
		t.Errorf("Preedit = %q, want ㄇㄚ", pre)
	}
}

func TestSessionDeleteCascade(t *testing.T) {
	s := newTestSession(Options{})

	typeSyllable(t, s, "ㄊㄞˊ")
	s.Select(2) // commit 台
	typeSyllable(t, s, "ㄏㄠ")

	// 1: open partial loses its last symbol.
	if err := s.Delete(); err != nil {
		t.Fatal(err)
	}
	if pre := s.Preedit(); pre != "ㄏ" {
		t.Fatalf("Preedit = %q, want ㄏ", pre)
	}
	if err := s.Delete(); err != nil {
		t.Fatal(err)
	}

	// 2: with the composer empty, a completed pending syllable goes next.
	typeSyllable(t, s, "ㄏㄠˇ")
	if err := s.Delete(); err != nil {
		t.Fatal(err)
	}
	if s.Composing() {
		t.Fatal("still composing after deleting pending syllable")
	}

	// 3: then the committed buffer, one segment at a time.
	if err := s.Delete(); err != nil {
		t.Fatal(err)
	}
	if got := s.Buffer(); got != "" {
		t.Fatalf("Buffer = %q, want empty", got)
	}

	// 4: nothing left anywhere.
	if err := s.Delete(); !errors.Is(err, compose.ErrNothingToDelete) {
		t.Errorf("Delete on empty session = %v, want ErrNothingToDelete", err)
	}
}

func TestSessionAutoSubmit(t *testing.T) {
	s := newTestSession(Options{AutoSubmit: true})

	// First syllable is ambiguous; nothing must commit yet.
	typeSyllable(t, s, "ㄊㄞˊ")
	if got := s.Buffer(); got != "" {
		t.Fatalf("Buffer = %q after first syllable, want empty", got)
	}

	// The second syllable leaves 台灣 as the only exact full-sequence
	// match, which commits without a selection event.
	typeSyllable(t, s, "ㄨㄢˉ")
	if got := s.Buffer(); got != "台灣" {
		t.Fatalf("Buffer = %q, want 台灣", got)
	}
	if got := s.Finalize(); got != "台灣" {
		t.Errorf("Finalize = %q, want 台灣", got)
	}
}

func TestSessionAutoSubmitOffByDefault(t *testing.T) {
	s := newTestSession(Options{})
	typeSyllable(t, s, "ㄊㄞˊ")
	typeSyllable(t, s, "ㄨㄢˉ")
	if got := s.Buffer(); got != "" {
		t.Errorf("Buffer = %q, want empty without auto-submit", got)
	}
}

func TestSessionFuzzyTone(t *testing.T) {
	s := newTestSession(Options{FuzzyTone: true, FuzzyTonePenalty: 50})

	// Wrong tone still reaches the ㄊㄞ2 entries, marked fuzzy.
	if err := typeSyllable(t, s, "ㄊㄞˋ"); err != nil {
		t.Fatalf("typing ㄊㄞˋ: %v", err)
	}
	cands := s.Candidates()
	if len(cands) == 0 {
		t.Fatal("no fuzzy candidates")
	}
	found := false
	for _, c := range cands {
		if c.Text == "台" {
			found = true
			if !c.Fuzzy {
				t.Error("wrong-tone match not marked fuzzy")
			}
		}
	}
	if !found {
		t.Errorf("台 missing from fuzzy candidates: %v", candidateTexts(s))
	}

	// Exact-tone typing yields the same text unmarked.
	s.Cancel()
	typeSyllable(t, s, "ㄊㄞˊ")
	for _, c := range s.Candidates() {
		if c.Text == "台" && c.Fuzzy {
			t.Error("exact-tone match marked fuzzy")
		}
	}
}

func TestSessionFuzzyToneOff(t *testing.T) {
	s := newTestSession(Options{})
	if err := typeSyllable(t, s, "ㄊㄞˋ"); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("err = %v, want ErrNoCandidates with fuzzy off", err)
	}
}

func TestSessionPunct(t *testing.T) {
	s := newTestSession(Options{FullWidthPunct: true})
	s.Punct(',')
	s.Punct('.')
	if got := s.Buffer(); got != "，。" {
		t.Errorf("Buffer = %q, want full-width ，。", got)
	}

	s = newTestSession(Options{})
	s.Punct(',')
	if got := s.Buffer(); got != "," {
		t.Errorf("Buffer = %q, want half-width ,", got)
	}
}

func TestSessionCancel(t *testing.T) {
	s := newTestSession(Options{})
	typeSyllable(t, s, "ㄊㄞˊ")
	s.Select(2)
	typeSyllable(t, s, "ㄏㄠ")

	s.Cancel()
	if s.Buffer() != "" || s.Preedit() != "" || s.Composing() {
		t.Errorf("state not cleared: buffer %q preedit %q", s.Buffer(), s.Preedit())
	}
	if len(s.Candidates()) != 0 {
		t.Error("candidates not cleared")
	}
}

func TestSessionFinalizeDropsOpenComposition(t *testing.T) {
	s := newTestSession(Options{})
	typeSyllable(t, s, "ㄊㄞˊ")
	s.Select(2)
	typeSyllable(t, s, "ㄏㄠ") // never completed

	if got := s.Finalize(); got != "台" {
		t.Errorf("Finalize = %q, want 台", got)
	}
	if s.Composing() {
		t.Error("still composing after Finalize")
	}
}

func TestSessionInitialText(t *testing.T) {
	s := NewSession(testDict(), learning.NewMemory(learning.DefaultParams()),
		Options{InitialText: "前文"}, nil)
	if got := s.Buffer(); got != "前文" {
		t.Fatalf("Buffer = %q, want seed text", got)
	}
	// Seeded text is editable character by character.
	if err := s.Delete(); err != nil {
		t.Fatal(err)
	}
	if got := s.Buffer(); got != "前" {
		t.Errorf("Buffer = %q, want 前", got)
	}
}

func TestSessionCandidateLimit(t *testing.T) {
	s := NewSession(testDict(), learning.NewMemory(learning.DefaultParams()),
		Options{CandidateCount: 2}, nil)
	typeSyllable(t, s, "ㄊㄞˊ")
	if got := len(s.Candidates()); got != 2 {
		t.Errorf("len(candidates) = %d, want 2", got)
	}
}

func TestResultsPutTake(t *testing.T) {
	r := NewResults(0)
	r.Put("caller-a", "台灣")
	r.Put("caller-b", "你好")

	if text, ok := r.Take("caller-a"); !ok || text != "台灣" {
		t.Errorf("Take(caller-a) = %q, %v", text, ok)
	}
	// Results are single-read.
	if _, ok := r.Take("caller-a"); ok {
		t.Error("second Take succeeded, want miss")
	}
	if text, ok := r.Take("caller-b"); !ok || text != "你好" {
		t.Errorf("Take(caller-b) = %q, %v", text, ok)
	}
}

func TestResultsExpiry(t *testing.T) {
	r := NewResults(time.Minute)
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	r.Put("caller", "台灣")
	clock = clock.Add(2 * time.Minute)
	if _, ok := r.Take("caller"); ok {
		t.Error("expired result still readable")
	}
}

func TestResultsReplace(t *testing.T) {
	r := NewResults(0)
	r.Put("caller", "first")
	r.Put("caller", "second")
	if text, _ := r.Take("caller"); text != "second" {
		t.Errorf("Take = %q, want the replacing result", text)
	}
}
