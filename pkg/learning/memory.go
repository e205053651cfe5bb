package learning

import "time"

// memoryStore keeps history for the current session only. Used when the
// learning directory is not writable.
type memoryStore struct {
	params  Params
	history map[string]map[string]*record
	bigrams map[string]map[string]int
	now     func() time.Time
}

type record struct {
	count    int
	lastUsed time.Time
}

// NewMemory returns a non-persistent store.
func NewMemory(params Params) Store {
	return &memoryStore{
		params:  params,
		history: make(map[string]map[string]*record),
		bigrams: make(map[string]map[string]int),
		now:     time.Now,
	}
}

func (m *memoryStore) Record(contextKey, text string) error {
	byText := m.history[contextKey]
	if byText == nil {
		byText = make(map[string]*record)
		m.history[contextKey] = byText
	}
	r := byText[text]
	if r == nil {
		r = &record{}
		byText[text] = r
	}
	r.count++
	r.lastUsed = m.now()
	return nil
}

func (m *memoryStore) Boost(contextKey string) (map[string]float64, error) {
	byText := m.history[contextKey]
	if len(byText) == 0 {
		return nil, nil
	}
	now := m.now()
	boosts := make(map[string]float64, len(byText))
	for text, r := range byText {
		boosts[text] = m.params.score(r.count, r.lastUsed, now)
	}
	return boosts, nil
}

func (m *memoryStore) RecordBigram(prev, next string) error {
	if prev == "" || next == "" {
		return nil
	}
	byNext := m.bigrams[prev]
	if byNext == nil {
		byNext = make(map[string]int)
		m.bigrams[prev] = byNext
	}
	byNext[next]++
	return nil
}

func (m *memoryStore) BigramBoost(prev string) (map[string]float64, error) {
	byNext := m.bigrams[prev]
	if len(byNext) == 0 {
		return nil, nil
	}
	boosts := make(map[string]float64, len(byNext))
	for next, count := range byNext {
		boosts[next] = m.params.SelectWeight * float64(count)
	}
	return boosts, nil
}

func (m *memoryStore) Clear() error {
	m.history = make(map[string]map[string]*record)
	m.bigrams = make(map[string]map[string]int)
	return nil
}

func (m *memoryStore) Persistent() bool { return false }

func (m *memoryStore) Close() error { return nil }
