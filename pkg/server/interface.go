/*
Package server implements msgpack IPC for zhuyin input sessions.

The server exposes the input engine over stdin/stdout using binary
msgpack messages. Each request carries an ID, an op discriminant, and
the fields that op needs; each response echoes the ID so clients can
multiplex.

A host drives one session per on-screen keyboard invocation:

	{"id": "r1", "op": "start", "caller": "plugin.video.example"}
	{"id": "r2", "op": "key", "sid": "...", "sym": "ㄊ"}
	{"id": "r3", "op": "key", "sid": "...", "sym": "ㄞ"}
	{"id": "r4", "op": "key", "sid": "...", "sym": "ˊ"}
	{"id": "r5", "op": "select", "sid": "...", "n": 1}
	{"id": "r6", "op": "finalize", "sid": "..."}

Key responses carry the preedit string, the committed buffer and the
ranked candidate list. Finalize stores the committed text in the result
registry under the caller id; the caller (or another process acting for
it) retrieves it once with:

	{"id": "r7", "op": "result", "caller": "plugin.video.example"}

Non-fatal engine conditions (invalid transition, nothing to delete, no
candidates) are reported in the response's warn field with state
unchanged, so hosts can route them without losing typed input.
*/
package server

// Request is the single envelope for all incoming ops.
type Request struct {
	ID string `msgpack:"id"`
	// Op is one of: start, key, neutral, select, delete, punct, left,
	// right, cancel, finalize, result, clear_history, health.
	Op      string `msgpack:"op"`
	Session string `msgpack:"sid,omitempty"`
	Caller  string `msgpack:"caller,omitempty"`
	Symbol  string `msgpack:"sym,omitempty"`
	Index   int    `msgpack:"n,omitempty"`
	Text    string `msgpack:"text,omitempty"` // initial buffer seed for start
}

// CandidateInfo is one ranked candidate on the wire.
type CandidateInfo struct {
	Text  string `msgpack:"w"`
	Rank  uint16 `msgpack:"r"`
	Fuzzy bool   `msgpack:"f,omitempty"`
}

// StateResponse reports session state after an op.
type StateResponse struct {
	ID         string          `msgpack:"id"`
	Session    string          `msgpack:"sid"`
	Preedit    string          `msgpack:"pre,omitempty"`
	Buffer     string          `msgpack:"buf,omitempty"`
	Candidates []CandidateInfo `msgpack:"cands,omitempty"`
	Warn       string          `msgpack:"warn,omitempty"`
	TimeTaken  int64           `msgpack:"t"`
}

// FinalResponse carries the committed text of a finalized session.
type FinalResponse struct {
	ID      string `msgpack:"id"`
	Session string `msgpack:"sid"`
	Text    string `msgpack:"text"`
}

// ResultResponse answers a result-registry read.
type ResultResponse struct {
	ID     string `msgpack:"id"`
	Caller string `msgpack:"caller"`
	Text   string `msgpack:"text,omitempty"`
	Found  bool   `msgpack:"found"`
}

// StatusResponse acknowledges ops without session state.
type StatusResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for failed requests.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
