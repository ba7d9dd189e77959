package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"morphcorpus/internal"
	"morphcorpus/internal/registry"
	"morphcorpus/internal/util"
)

// FrequencyCounter is the part of the word registry the segmenters write to.
type FrequencyCounter interface {
	Touch(word string) registry.Entry
}

type ProseOptions struct {
	// StartMarker is the line that switches parsing on. The marker line itself is then
	// segmented like any other line, so the default "" starts at the first blank line.
	StartMarker string
	// LineLimit stops reading after that many lines, skipped lines included. 0 disables it.
	LineLimit int
}

type proseState int

const (
	// stateSeeking skips lines until the start marker.
	stateSeeking proseState = iota
	// stateInLine is inside a run of word lines.
	stateInLine
	// stateAwaitingBoundary follows a single blank line, a line number or a chapter
	// heading. A digit line here opens a verse; another blank line opens a line.
	stateAwaitingBoundary
)

func (s proseState) String() string {
	switch s {
	case stateSeeking:
		return "Seeking"
	case stateInLine:
		return "InLine"
	case stateAwaitingBoundary:
		return "AwaitingBoundary"
	default:
		return fmt.Sprintf("proseState(%d)", int(s))
	}
}

// ProseSegmenter turns a diplomatic transcription, one word per line, into positioned
// tokens. Structure is inferred from boundary lines only:
//
//	""         blank; a second consecutive blank starts a new line
//	"12"       after one blank: verse 12, next line; otherwise: line number 12
//	"3:"       chapter 3
//	anything   a word
type ProseSegmenter struct {
	opts    ProseOptions
	counter FrequencyCounter

	state proseState
	cap   string
	verse string
	line  int
	index int
	read  int
}

func NewProseSegmenter(counter FrequencyCounter, opts ProseOptions) *ProseSegmenter {
	return &ProseSegmenter{
		opts:    opts,
		counter: counter,
		state:   stateSeeking,
		cap:     "1",
		verse:   "1",
		line:    0,
		index:   1,
	}
}

// Step consumes one line and returns the token it produced, if any.
func (s *ProseSegmenter) Step(raw string) (internal.Token, bool) {
	line := strings.TrimSpace(raw)

	if s.state == stateSeeking {
		if line != s.opts.StartMarker {
			return internal.Token{}, false
		}
		s.state = stateInLine
	}

	switch {
	case line == "":
		if s.state == stateAwaitingBoundary {
			s.line++
			s.index = 1
			s.state = stateInLine
		} else {
			s.state = stateAwaitingBoundary
		}
	case util.IsDigits(line) && s.state == stateAwaitingBoundary:
		s.verse = line
		s.line++
		s.index = 1
		s.state = stateInLine
	case util.IsDigits(line):
		if n, err := strconv.Atoi(line); err == nil {
			s.line = n
		}
		s.index = 1
		s.state = stateAwaitingBoundary
	case strings.Contains(line, ":"):
		s.cap = strings.SplitN(line, ":", 2)[0]
		s.state = stateAwaitingBoundary
	default:
		s.state = stateInLine
		tok := internal.Token{
			ID:     fmt.Sprintf("%s-%s-%d-%d", s.cap, s.verse, s.line, s.index),
			Source: internal.SourceText,
			Cap:    s.cap,
			Verse:  s.verse,
			Line:   s.line,
			Index:  s.index,
			Word:   line,
		}
		s.counter.Touch(line)
		s.index++
		return tok, true
	}
	return internal.Token{}, false
}

// Segment reads r line by line until EOF or the line limit.
func (s *ProseSegmenter) Segment(r io.Reader) ([]internal.Token, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tokens := []internal.Token{}
	for scanner.Scan() {
		if tok, ok := s.Step(scanner.Text()); ok {
			tokens = append(tokens, tok)
		}
		s.read++
		if s.opts.LineLimit > 0 && s.read >= s.opts.LineLimit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return tokens, fmt.Errorf("read lines: %w", err)
	}
	return tokens, nil
}

// LinesRead is the number of lines consumed so far, skipped lines included.
func (s *ProseSegmenter) LinesRead() int {
	return s.read
}
