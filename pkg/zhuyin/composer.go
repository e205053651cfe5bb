package zhuyin

import "errors"

// State is the composer's position in the syllable state machine.
type State int

const (
	StateEmpty State = iota
	StateHasInitial
	StateHasMedial
	StateAwaitingTone // final accepted, only a tone or delete is valid
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateHasInitial:
		return "has-initial"
	case StateHasMedial:
		return "has-medial"
	case StateAwaitingTone:
		return "awaiting-tone"
	case StateComplete:
		return "complete"
	default:
		return "invalid"
	}
}

var (
	// ErrInvalidTransition is reported when a symbol's class violates the
	// initial < medial < final < tone ordering or a phonotactic rule.
	ErrInvalidTransition = errors.New("zhuyin: symbol not valid in current state")

	// ErrNothingToDelete is reported for a delete on an empty composer,
	// so the caller can route it as a cancel signal.
	ErrNothingToDelete = errors.New("zhuyin: nothing to delete")
)

// EventKind discriminates composer feed outcomes.
type EventKind int

const (
	// Composing: symbol accepted, syllable still open.
	Composing EventKind = iota
	// Completed: tone assigned, Event.Syllable carries the result and the
	// composer has reset to empty.
	Completed
	// Rejected: symbol refused, state unchanged, Event.Err says why.
	Rejected
)

// Event is the outcome of feeding one symbol.
type Event struct {
	Kind     EventKind
	Syllable Syllable
	Err      error
}

// Composer accumulates class-ordered symbols into one syllable. The zero
// value is ready to use.
type Composer struct {
	cur Syllable
}

// State derives the machine state from which parts are set.
func (c *Composer) State() State {
	switch {
	case c.cur.Final != 0:
		return StateAwaitingTone
	case c.cur.Medial != 0:
		return StateHasMedial
	case c.cur.Initial != 0:
		return StateHasInitial
	default:
		return StateEmpty
	}
}

// Current returns the partial syllable under composition.
func (c *Composer) Current() Syllable {
	return c.cur
}

// ValidTransition reports whether a symbol of class in may be accepted
// from state s. Pure ordering check; phonotactic pair rules are applied
// by Feed on the concrete symbols.
func ValidTransition(s State, in Class) bool {
	switch in {
	case ClassInitial:
		return s == StateEmpty
	case ClassMedial:
		return s == StateEmpty || s == StateHasInitial
	case ClassFinal:
		return s == StateEmpty || s == StateHasInitial || s == StateHasMedial
	case ClassTone:
		return s != StateEmpty && s != StateComplete
	default:
		return false
	}
}

// Feed accepts one symbol and advances the machine. Unknown runes and
// out-of-order classes yield Rejected with the state untouched. A tone
// completes the syllable and resets the composer.
func (c *Composer) Feed(sym rune) Event {
	class, err := ClassOf(sym)
	if err != nil {
		return Event{Kind: Rejected, Err: ErrInvalidSymbol}
	}
	if !ValidTransition(c.State(), class) {
		return Event{Kind: Rejected, Err: ErrInvalidTransition}
	}

	switch class {
	case ClassInitial:
		c.cur.Initial = sym
	case ClassMedial:
		if c.cur.Initial != 0 && !medialAllowed(c.cur.Initial, sym) {
			return Event{Kind: Rejected, Err: ErrInvalidTransition}
		}
		c.cur.Medial = sym
	case ClassFinal:
		c.cur.Final = sym
	case ClassTone:
		return c.complete(ToneOf(sym))
	}
	return Event{Kind: Composing, Syllable: c.cur}
}

// CompleteNeutral closes the open syllable without an explicit tone
// mark, assigning the neutral tone. From empty it is a rejected no-op.
func (c *Composer) CompleteNeutral() Event {
	if c.State() == StateEmpty {
		return Event{Kind: Rejected, Err: ErrInvalidTransition}
	}
	return c.complete(NeutralTone)
}

func (c *Composer) complete(tone int) Event {
	// ㄐㄑㄒ cannot stand without ㄧ or ㄩ.
	if isJQX(c.cur.Initial) && c.cur.Medial == 0 {
		return Event{Kind: Rejected, Err: ErrInvalidTransition}
	}
	done := c.cur
	done.Tone = tone
	c.cur = Syllable{}
	return Event{Kind: Completed, Syllable: done}
}

// Delete removes the most recently added symbol and returns the
// composer to the preceding state.
func (c *Composer) Delete() error {
	switch {
	case c.cur.Final != 0:
		c.cur.Final = 0
	case c.cur.Medial != 0:
		c.cur.Medial = 0
	case c.cur.Initial != 0:
		c.cur.Initial = 0
	default:
		return ErrNothingToDelete
	}
	return nil
}

// Reset clears any partial syllable.
func (c *Composer) Reset() {
	c.cur = Syllable{}
}

func medialAllowed(initial, medial rune) bool {
	if isJQX(initial) {
		return medial == 'ㄧ' || medial == 'ㄩ'
	}
	if isSibilant(initial) {
		return medial != 'ㄩ'
	}
	return true
}
