// Package cli handles cmd line input for DBG and testing the engine interactively
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/HiDomesticCat/zhuyinserve/pkg/engine"
)

// InputHandler drives an engine session from stdin for debugging. Each
// line is fed rune by rune: Bopomofo symbols and tone marks go to the
// composer, digits 1-9 fast-select candidates, "<" deletes, "=" closes
// the open syllable with the neutral tone, and "!" finalizes.
type InputHandler struct {
	session      *engine.Session
	requestCount int
}

// NewInputHandler creates a new CLI input handler over a session.
func NewInputHandler(session *engine.Session) *InputHandler {
	return &InputHandler{session: session}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin, and feeds
// it through the engine. Loop terminates on stdin error/EOF.
func (h *InputHandler) Start() error {
	log.Print("ZhuyinServe CLI [DBG]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type bopomofo symbols, 1-9 to select, < delete, = neutral tone, ! finalize (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleLine(line)
	}
}

// handleLine feeds one line of input and prints the resulting state.
func (h *InputHandler) handleLine(line string) {
	h.requestCount++
	start := time.Now()

	for _, r := range line {
		var err error
		switch {
		case r >= '1' && r <= '9':
			err = h.session.Select(int(r - '0'))
		case r == '<':
			err = h.session.Delete()
		case r == '=':
			err = h.session.CompleteNeutral()
		case r == '!':
			log.Printf("finalized: %q", h.session.Finalize())
			return
		default:
			err = h.session.FeedSymbol(r)
		}
		if err != nil {
			log.Warnf("key %q: %v", r, err)
		}
	}

	log.Debugf("Took %v for line '%s'", time.Since(start), line)

	if pre := h.session.Preedit(); pre != "" {
		log.Printf("preedit: %s", pre)
	}
	if buf := h.session.Buffer(); buf != "" {
		log.Printf("buffer:  %s", buf)
	}

	cands := h.session.Candidates()
	if len(cands) == 0 {
		return
	}
	log.Printf("%d candidates:", len(cands))
	for i, c := range cands {
		clText := fmt.Sprintf("\033[38;5;75m%s\033[0m", c.Text)
		marker := ""
		if c.Fuzzy {
			marker = " (fuzzy)"
		}
		log.Printf("%2d. %-20s (freq: %6d, score: %8.1f)%s", i+1, clText, c.Freq, c.Score, marker)
	}
}
