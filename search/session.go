package search

import (
	"net/url"
	"strings"
)

// QueryParam is the URL parameter that mirrors the search box.
const QueryParam = "q"

// History is the browser history a Session keeps in step with its query.
type History interface {
	// Push adds a new history entry.
	Push(url string)
	// Replace rewrites the current entry.
	Replace(url string)
}

// Searcher is the part of Index a Session needs.
type Searcher[T any] interface {
	Search(query string) []Result[T]
	Searchable(query string) bool
}

// Navigation names the event that drives a Session.
type Navigation string

const (
	NavLoad    Navigation = "load"
	NavInput   Navigation = "input"
	NavHistory Navigation = "history"
	NavReset   Navigation = "reset"
)

// ParseNavigation maps a header value onto a Navigation, defaulting to NavLoad.
func ParseNavigation(v string) Navigation {
	switch Navigation(strings.ToLower(strings.TrimSpace(v))) {
	case NavInput:
		return NavInput
	case NavHistory:
		return NavHistory
	case NavReset:
		return NavReset
	default:
		return NavLoad
	}
}

// Session holds the query typed into a search box, the results for it, and
// the page URL. Typing pushes history entries; back/forward navigation
// replays them without pushing.
type Session[T any] struct {
	searcher Searcher[T]
	history  History
	current  url.URL
	query    string
	results  []Result[T]
}

// NewSession starts a session for the page at current.
func NewSession[T any](s Searcher[T], h History, current *url.URL) *Session[T] {
	sess := &Session[T]{searcher: s, history: h}
	if current != nil {
		sess.current = *current
	}
	return sess
}

// Query returns the text shown in the search box.
func (s *Session[T]) Query() string { return s.query }

// Results returns the results for the current query.
func (s *Session[T]) Results() []Result[T] { return s.results }

// URL returns the page URL as the session believes the browser shows it.
func (s *Session[T]) URL() string { return s.current.String() }

// ShowAll reports whether the caller should list every document instead of
// results, i.e. the query is too short to search.
func (s *Session[T]) ShowAll() bool {
	return !s.searcher.Searchable(strings.TrimSpace(s.query))
}

// Navigate dispatches nav with u as the URL the event carries. For NavInput
// the typed text is read from u's query parameter.
func (s *Session[T]) Navigate(nav Navigation, u *url.URL) {
	switch nav {
	case NavInput:
		s.Input(u.Query().Get(QueryParam))
	case NavHistory:
		s.PopState(u)
	case NavReset:
		s.Reset()
	default:
		s.Load(u)
	}
}

// Load initialises the session from the page URL on first render. It may
// normalise the URL in place but never adds a history entry.
func (s *Session[T]) Load(u *url.URL) {
	s.current = *u
	s.query = u.Query().Get(QueryParam)
	s.run(strings.TrimSpace(s.query))
	if canonical := s.urlFor(strings.TrimSpace(s.query)); canonical != s.current.String() {
		s.replace(canonical)
	}
}

// Input handles a change of the search box.
func (s *Session[T]) Input(text string) {
	s.query = text
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		s.Reset()
	case s.searcher.Searchable(trimmed):
		s.run(trimmed)
		s.push(s.urlFor(trimmed))
	default:
		// below the minimum only the query changes
		s.results = nil
	}
}

// PopState handles back/forward navigation to u. The history is left alone
// so replaying an entry cannot create another one.
func (s *Session[T]) PopState(u *url.URL) {
	s.current = *u
	s.query = u.Query().Get(QueryParam)
	s.run(strings.TrimSpace(s.query))
}

// Reset clears the query, the results, and the URL parameter.
func (s *Session[T]) Reset() {
	s.query = ""
	s.results = nil
	s.push(s.urlFor(""))
}

func (s *Session[T]) run(query string) {
	if !s.searcher.Searchable(query) {
		s.results = nil
		return
	}
	s.results = s.searcher.Search(query)
}

func (s *Session[T]) urlFor(query string) string {
	u := s.current
	v := u.Query()
	if query == "" {
		v.Del(QueryParam)
	} else {
		v.Set(QueryParam, query)
	}
	u.RawQuery = v.Encode()
	return u.String()
}

func (s *Session[T]) push(target string) {
	if target == s.current.String() {
		return
	}
	s.setCurrent(target)
	s.history.Push(target)
}

func (s *Session[T]) replace(target string) {
	if target == s.current.String() {
		return
	}
	s.setCurrent(target)
	s.history.Replace(target)
}

func (s *Session[T]) setCurrent(target string) {
	if u, err := url.Parse(target); err == nil {
		s.current = *u
	}
}
