package content

import "strings"

// Page is one displayable segment of a topic body. Pages are derived fresh
// on every read and are never persisted.
type Page struct {
	Text       string `json:"text"`
	QuizID     string `json:"quiz_id,omitempty"`
	ExerciseID string `json:"exercise_id,omitempty"`
	// AutoAdvance permits revealing the next page without an explicit
	// continue click once this page's gate (if any) is passed.
	AutoAdvance bool `json:"auto_advance,omitempty"`
}

// Gated reports whether advancing past the page requires a passed assessment.
func (p Page) Gated() bool { return p.QuizID != "" || p.ExerciseID != "" }

const (
	markerNext      = "[NEXT]"
	markerQuizOpen  = "[QUIZ:"
	markerChalOpen  = "[CHALLENGE:"
	markerCloseByte = ']'
)

type markerKind int

const (
	kindNext markerKind = iota
	kindQuiz
	kindChallenge
)

type marker struct {
	start, end int
	kind       markerKind
	id         string
}

// Segment splits a topic body into its ordered page sequence. The scan is
// strictly left to right: each text span between markers becomes a page,
// a quiz or challenge marker binds its id to the page preceding it, and
// [NEXT] flags the page it terminates as auto-advancing. A binding marker
// with no usable preceding page (document start, or the previous page is
// already bound) carries forward onto the next page so it is never lost.
// Markerless content yields a single unbound page. Malformed markers (no
// closing bracket, blank id) are left in the text verbatim.
func Segment(raw string) []Page {
	var (
		pages            []Page
		pendQuiz, pendEx string
	)
	emit := func(text string) {
		pages = append(pages, Page{Text: text, QuizID: pendQuiz, ExerciseID: pendEx})
		pendQuiz, pendEx = "", ""
	}
	bind := func(kind markerKind, id string) {
		if n := len(pages); n > 0 && !pages[n-1].Gated() && pendQuiz == "" && pendEx == "" {
			if kind == kindQuiz {
				pages[n-1].QuizID = id
			} else {
				pages[n-1].ExerciseID = id
			}
			return
		}
		if kind == kindQuiz {
			pendQuiz = id
		} else {
			pendEx = id
		}
	}

	rest := raw
	for {
		m, ok := findMarker(rest)
		if !ok {
			break
		}
		if span := strings.TrimSpace(rest[:m.start]); span != "" {
			emit(span)
		}
		if m.kind == kindNext {
			if n := len(pages); n > 0 {
				pages[n-1].AutoAdvance = true
			}
		} else {
			bind(m.kind, m.id)
		}
		rest = rest[m.end:]
	}
	if tail := strings.TrimSpace(rest); tail != "" {
		emit(tail)
	}
	// A trailing binding marker still needs a page to live on.
	if pendQuiz != "" || pendEx != "" {
		emit("")
	}
	if len(pages) == 0 {
		pages = append(pages, Page{Text: strings.TrimSpace(raw)})
	}
	return pages
}

func findMarker(s string) (marker, bool) {
	for i := strings.IndexByte(s, '['); i >= 0; {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, markerNext):
			return marker{start: i, end: i + len(markerNext), kind: kindNext}, true
		case strings.HasPrefix(rest, markerQuizOpen):
			if id, end, ok := markerID(s, i+len(markerQuizOpen)); ok {
				return marker{start: i, end: end, kind: kindQuiz, id: id}, true
			}
		case strings.HasPrefix(rest, markerChalOpen):
			if id, end, ok := markerID(s, i+len(markerChalOpen)); ok {
				return marker{start: i, end: end, kind: kindChallenge, id: id}, true
			}
		}
		j := strings.IndexByte(s[i+1:], '[')
		if j < 0 {
			break
		}
		i += 1 + j
	}
	return marker{}, false
}

func markerID(s string, from int) (id string, end int, ok bool) {
	j := strings.IndexByte(s[from:], markerCloseByte)
	if j < 0 {
		return "", 0, false
	}
	id = strings.TrimSpace(s[from : from+j])
	if id == "" {
		return "", 0, false
	}
	return id, from + j + 1, true
}
