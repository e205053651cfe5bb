package server

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/HiDomesticCat/zhuyinserve/internal/logger"
	"github.com/HiDomesticCat/zhuyinserve/pkg/compose"
	"github.com/HiDomesticCat/zhuyinserve/pkg/config"
	"github.com/HiDomesticCat/zhuyinserve/pkg/dictionary"
	"github.com/HiDomesticCat/zhuyinserve/pkg/engine"
	"github.com/HiDomesticCat/zhuyinserve/pkg/learning"
	"github.com/HiDomesticCat/zhuyinserve/pkg/zhuyin"
)

// Server handles the IPC for input sessions.
type Server struct {
	dict     *dictionary.Store
	learn    learning.Store
	cfg      *config.Config
	results  *engine.Results
	sessions map[string]*engine.Session

	dec     *msgpack.Decoder
	enc     *msgpack.Encoder
	entropy *rand.Rand
}

// NewServer creates an IPC server over stdin/stdout.
func NewServer(dict *dictionary.Store, learn learning.Store, cfg *config.Config) *Server {
	return &Server{
		dict:     dict,
		learn:    learn,
		cfg:      cfg,
		results:  engine.NewResults(0),
		sessions: make(map[string]*engine.Session),
		dec:      msgpack.NewDecoder(os.Stdin),
		enc:      msgpack.NewEncoder(os.Stdout),
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins the request loop. Returns nil on EOF.
func (s *Server) Start() error {
	log.Debug("Starting server.")
	s.send(StatusResponse{Status: "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handle(req)
	}
}

func (s *Server) handle(req Request) {
	started := time.Now()

	switch req.Op {
	case "start":
		s.handleStart(req)
	case "key", "neutral", "select", "delete", "punct", "left", "right":
		s.handleSessionOp(req, started)
	case "cancel":
		if sess, ok := s.session(req); ok {
			sess.Cancel()
			s.send(StatusResponse{ID: req.ID, Status: "cancelled"})
		}
	case "finalize":
		s.handleFinalize(req)
	case "result":
		text, found := s.results.Take(req.Caller)
		s.send(ResultResponse{ID: req.ID, Caller: req.Caller, Text: text, Found: found})
	case "clear_history":
		if err := s.learn.Clear(); err != nil {
			s.sendError(req.ID, fmt.Sprintf("clearing history: %v", err), 500)
			return
		}
		s.send(StatusResponse{ID: req.ID, Status: "cleared"})
	case "health":
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown op: %s", req.Op), 400)
	}
}

func (s *Server) handleStart(req Request) {
	opts := engine.OptionsFromConfig(s.cfg)
	opts.InitialText = req.Text

	sid := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
	s.sessions[sid] = engine.NewSession(s.dict, s.learn, opts, logger.New("engine"))
	log.Debugf("session %s started for caller %q", sid, req.Caller)

	s.send(StateResponse{ID: req.ID, Session: sid, Buffer: s.sessions[sid].Buffer()})
}

func (s *Server) handleSessionOp(req Request, started time.Time) {
	sess, ok := s.session(req)
	if !ok {
		return
	}

	var err error
	switch req.Op {
	case "key":
		sym, ok := singleRune(req.Symbol)
		if !ok {
			s.sendError(req.ID, "key op wants exactly one symbol rune", 400)
			return
		}
		err = sess.FeedSymbol(sym)
	case "neutral":
		err = sess.CompleteNeutral()
	case "select":
		err = sess.Select(req.Index)
	case "delete":
		err = sess.Delete()
	case "punct":
		sym, ok := singleRune(req.Symbol)
		if !ok {
			s.sendError(req.ID, "punct op wants exactly one rune", 400)
			return
		}
		sess.Punct(sym)
	case "left":
		sess.CursorLeft()
	case "right":
		sess.CursorRight()
	}

	resp := StateResponse{
		ID:        req.ID,
		Session:   req.Session,
		Preedit:   sess.Preedit(),
		Buffer:    sess.Buffer(),
		TimeTaken: time.Since(started).Microseconds(),
	}
	for i, c := range sess.Candidates() {
		resp.Candidates = append(resp.Candidates, CandidateInfo{
			Text:  c.Text,
			Rank:  uint16(i + 1),
			Fuzzy: c.Fuzzy,
		})
	}
	if err != nil {
		resp.Warn = warnCode(err)
	}
	s.send(resp)
}

func (s *Server) handleFinalize(req Request) {
	sess, ok := s.session(req)
	if !ok {
		return
	}
	text := sess.Finalize()
	delete(s.sessions, req.Session)

	if req.Caller != "" {
		s.results.Put(req.Caller, text)
	}
	log.Debugf("session %s finalized (%d runes)", req.Session, len([]rune(text)))
	s.send(FinalResponse{ID: req.ID, Session: req.Session, Text: text})
}

func (s *Server) session(req Request) (*engine.Session, bool) {
	sess, ok := s.sessions[req.Session]
	if !ok {
		s.sendError(req.ID, fmt.Sprintf("Unknown session: %s", req.Session), 404)
	}
	return sess, ok
}

// warnCode maps non-fatal engine conditions to wire labels. State is
// unchanged for all of them.
func warnCode(err error) string {
	switch {
	case errors.Is(err, zhuyin.ErrInvalidSymbol):
		return "invalid_symbol"
	case errors.Is(err, zhuyin.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, zhuyin.ErrNothingToDelete), errors.Is(err, compose.ErrNothingToDelete):
		return "nothing_to_delete"
	case errors.Is(err, engine.ErrNoCandidates):
		return "no_candidates"
	case errors.Is(err, engine.ErrNoSuchCandidate):
		return "no_such_candidate"
	default:
		return "error"
	}
}

func (s *Server) send(response interface{}) {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
	log.Debugf("Request %s failed: %s (%d)", id, message, code)
}

func singleRune(str string) (rune, bool) {
	runes := []rune(str)
	if len(runes) != 1 {
		return 0, false
	}
	return runes[0], true
}
