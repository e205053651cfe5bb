/*
Package engine drives one input session: key events in, ranked
candidates out, committed text on finalize.

A session is single-threaded and event-driven; every key event is
handled to completion before the next. The engine owns the compose
state (open syllable, completed-but-uncommitted syllables, commit
buffer) and consults the dictionary and learning stores through the
ranker on every completed syllable.
*/
package engine

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/HiDomesticCat/zhuyinserve/pkg/compose"
	"github.com/HiDomesticCat/zhuyinserve/pkg/config"
	"github.com/HiDomesticCat/zhuyinserve/pkg/dictionary"
	"github.com/HiDomesticCat/zhuyinserve/pkg/learning"
	"github.com/HiDomesticCat/zhuyinserve/pkg/suggest"
	"github.com/HiDomesticCat/zhuyinserve/pkg/zhuyin"
)

var (
	// ErrNoCandidates is reported when a completed syllable sequence has
	// no dictionary match. The caller may fall back to showing the raw
	// symbols; engine state is left untouched.
	ErrNoCandidates = errors.New("engine: no candidates for syllable sequence")

	// ErrNoSuchCandidate is reported for a fast-select index outside the
	// current candidate list.
	ErrNoSuchCandidate = errors.New("engine: candidate index out of range")
)

// Options are the per-session settings recognized at initialization.
type Options struct {
	CandidateCount  int
	LearningEnabled bool
	AutoSubmit      bool
	FullWidthPunct  bool
	FuzzyTone       bool
	InitialText     string

	FuzzyTonePenalty float64
}

// OptionsFromConfig lifts the static config into session options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		CandidateCount:   config.ClampCandidateCount(cfg.Engine.CandidateCount),
		LearningEnabled:  cfg.Engine.LearningEnabled,
		AutoSubmit:       cfg.Engine.AutoSubmit,
		FullWidthPunct:   cfg.Engine.FullWidthPunct,
		FuzzyTone:        cfg.Engine.FuzzyTone,
		FuzzyTonePenalty: cfg.Rank.FuzzyTonePenalty,
	}
}

// Session is one interactive input run. Not safe for concurrent use;
// the host delivers events one at a time.
type Session struct {
	opts  Options
	dict  *dictionary.Store
	learn learning.Store

	composer   zhuyin.Composer
	pending    []zhuyin.Syllable
	pendingKey string
	candidates []suggest.Candidate
	buffer     *compose.Buffer

	// lastCommitted feeds the bigram learner.
	lastCommitted string

	logger *log.Logger
}

// NewSession creates a session over a loaded dictionary and an open
// learning store.
func NewSession(dict *dictionary.Store, learn learning.Store, opts Options, logger *log.Logger) *Session {
	if opts.CandidateCount == 0 {
		opts.CandidateCount = config.ClampCandidateCount(0)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		opts:   opts,
		dict:   dict,
		learn:  learn,
		buffer: compose.NewBuffer(opts.InitialText),
		logger: logger,
	}
}

// FeedSymbol routes one Bopomofo symbol to the composer. A tone mark
// completes the open syllable, appends it to the pending sequence and
// refreshes the candidate list; auto-submit may then commit directly.
func (s *Session) FeedSymbol(sym rune) error {
	ev := s.composer.Feed(sym)
	switch ev.Kind {
	case zhuyin.Rejected:
		return ev.Err
	case zhuyin.Composing:
		// A pre-tone partial narrows the phrase prefix matches.
		return s.refresh()
	case zhuyin.Completed:
		s.pending = append(s.pending, ev.Syllable)
		return s.refresh()
	}
	return nil
}

// CompleteNeutral closes the open syllable with the neutral tone, the
// explicit complete-without-tone action.
func (s *Session) CompleteNeutral() error {
	ev := s.composer.CompleteNeutral()
	if ev.Kind == zhuyin.Rejected {
		return ev.Err
	}
	s.pending = append(s.pending, ev.Syllable)
	return s.refresh()
}

// Select commits the nth (1-based) current candidate, feeding the
// choice back into the learning store.
func (s *Session) Select(n int) error {
	if n < 1 || n > len(s.candidates) {
		return ErrNoSuchCandidate
	}
	s.commit(s.candidates[n-1])
	return nil
}

// Delete removes the most recent input unit: the last symbol of the
// open syllable, else the last pending syllable, else the buffer
// segment before the cursor. With everything empty it reports
// ErrNothingToDelete so the host can route it as cancel.
func (s *Session) Delete() error {
	if err := s.composer.Delete(); err == nil {
		return s.refresh()
	}
	if len(s.pending) > 0 {
		s.pending = s.pending[:len(s.pending)-1]
		return s.refresh()
	}
	if err := s.buffer.DeleteBack(); err != nil {
		return compose.ErrNothingToDelete
	}
	return nil
}

// Punct commits a punctuation character at the cursor, mapped to its
// full-width form when the session is configured for it.
func (s *Session) Punct(r rune) {
	text := string(r)
	if s.opts.FullWidthPunct {
		text = FullWidth(r)
	}
	s.buffer.Commit(text)
	s.lastCommitted = text
}

// CursorLeft moves the commit-buffer cursor toward the start.
func (s *Session) CursorLeft() { s.buffer.CursorLeft() }

// CursorRight moves the commit-buffer cursor toward the end.
func (s *Session) CursorRight() { s.buffer.CursorRight() }

// Cancel clears the compose state and commit buffer. Learning records
// already written from prior selections are untouched.
func (s *Session) Cancel() {
	s.composer.Reset()
	s.pending = nil
	s.pendingKey = ""
	s.candidates = nil
	s.buffer.Clear()
}

// Finalize returns the full committed text, the terminal operation.
func (s *Session) Finalize() string {
	s.composer.Reset()
	s.pending = nil
	s.pendingKey = ""
	s.candidates = nil
	return s.buffer.Finalize()
}

// Candidates returns the current ranked list.
func (s *Session) Candidates() []suggest.Candidate {
	return s.candidates
}

// Preedit renders the uncommitted input: pending syllables followed by
// the open partial, for raw-symbol display.
func (s *Session) Preedit() string {
	var out string
	for _, syl := range s.pending {
		out += syl.String()
	}
	if cur := s.composer.Current(); !cur.Empty() {
		out += cur.String()
	}
	return out
}

// Buffer returns the committed-so-far text.
func (s *Session) Buffer() string {
	return s.buffer.String()
}

// Composing reports whether any uncommitted input is present.
func (s *Session) Composing() bool {
	return len(s.pending) > 0 || !s.composer.Current().Empty()
}

// commit writes a chosen candidate into the buffer and the learning
// store, then clears the pending sequence.
func (s *Session) commit(c suggest.Candidate) {
	s.buffer.Commit(c.Text)

	if s.opts.LearningEnabled && s.learn != nil {
		if err := s.learn.Record(s.pendingKey, c.Text); err != nil {
			s.logger.Warnf("recording selection: %v", err)
		}
		if prev := lastRune(s.lastCommitted); prev != "" {
			if err := s.learn.RecordBigram(prev, firstRune(c.Text)); err != nil {
				s.logger.Warnf("recording bigram: %v", err)
			}
		}
	}

	s.lastCommitted = c.Text
	s.pending = nil
	s.pendingKey = ""
	s.candidates = nil
}

// refresh recomputes the candidate list for the pending sequence plus
// the open partial, and applies auto-submit when it leaves exactly one
// exact match for a fully completed sequence.
func (s *Session) refresh() error {
	if len(s.pending) == 0 {
		s.pendingKey = ""
		s.candidates = nil
		return nil
	}

	key := zhuyin.SequenceKey(s.pending)
	s.pendingKey = key
	partial := s.composer.Current()

	// Candidates track the whole preedit: with an open partial the
	// pending sequence alone no longer matches what the user sees.
	var hits []suggest.Hit
	if partial.Empty() {
		hits = suggest.Exact(s.dict.Lookup(key))
	}

	if s.opts.FuzzyTone {
		// Tone-insensitive: one prefix over the toneless index covers
		// relaxed tones, the open partial, and phrase continuations.
		q := zhuyin.TonelessSequenceKey(s.pending)
		if !partial.Empty() {
			q += " " + partial.TonelessKey()
		}
		hits = append(hits, suggest.Fuzzy(s.dict.LookupPrefixToneless(q))...)
	} else {
		// Exact tones on completed syllables, prefix on the partial.
		// The trailing space pins the prefix to a syllable boundary so
		// phrase continuations match without an open partial.
		q := key + " "
		if !partial.Empty() {
			q += partial.TonelessKey()
		}
		hits = append(hits, suggest.Exact(s.dict.LookupPrefix(q))...)
	}

	if len(hits) == 0 {
		s.candidates = nil
		return ErrNoCandidates
	}

	var boosts map[string]float64
	if s.opts.LearningEnabled && s.learn != nil {
		var err error
		boosts, err = s.learn.Boost(key)
		if err != nil {
			s.logger.Warnf("learning boost: %v", err)
		}
		if prev := lastRune(s.lastCommitted); prev != "" {
			if bi, err := s.learn.BigramBoost(prev); err == nil && len(bi) > 0 {
				boosts = applyBigram(boosts, bi, hits)
			}
		}
	}

	s.candidates = suggest.Rank(hits, boosts, suggest.Options{
		FuzzyPenalty: s.opts.FuzzyTonePenalty,
		Limit:        s.opts.CandidateCount,
	})

	// Auto-submit only on an unambiguous exact match of the full
	// sequence, never on a lone prefix continuation still being typed.
	if s.opts.AutoSubmit && partial.Empty() && len(s.candidates) == 1 &&
		!s.candidates[0].Fuzzy && s.candidates[0].Key == key {
		s.commit(s.candidates[0])
	}
	return nil
}

// applyBigram adds the bigram score of each hit's leading character to
// its boost, so candidates that historically followed the previous
// committed character rank higher.
func applyBigram(boosts, bigram map[string]float64, hits []suggest.Hit) map[string]float64 {
	if boosts == nil {
		boosts = make(map[string]float64, len(hits))
	}
	for _, h := range hits {
		if score, ok := bigram[firstRune(h.Entry.Text)]; ok {
			boosts[h.Entry.Text] += score
		}
	}
	return boosts
}

func lastRune(s string) string {
	var last rune
	for _, r := range s {
		last = r
	}
	if last == 0 {
		return ""
	}
	return string(last)
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
