// Package memhost keeps comment threads in memory for hosts without a
// document UI of their own.
package memhost

import (
	"sync"

	"prdiff/internal/commentctl"
	"prdiff/internal/diffview"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

type Thread struct {
	host *Host

	URI      string
	Path     string
	LHS      bool
	Range    commentctl.Range
	Comments []commentctl.DisplayComment

	Collapsed bool
	Disposals int
}

func (t *Thread) Dispose() {
	t.host.mu.Lock()
	defer t.host.mu.Unlock()
	t.Disposals++
}

func (t *Thread) SetComments(comments []commentctl.DisplayComment) {
	t.host.mu.Lock()
	defer t.host.mu.Unlock()
	t.Comments = comments
}

func (t *Thread) SetCollapsed(collapsed bool) {
	t.host.mu.Lock()
	defer t.host.mu.Unlock()
	t.Collapsed = collapsed
}

// Host is a commentctl.ThreadRenderer remembering every thread it created.
type Host struct {
	mu      sync.Mutex
	threads []*Thread
}

var _ commentctl.ThreadRenderer = (*Host)(nil)

func New() *Host {
	return &Host{}
}

func (h *Host) CreateThread(uri string, r commentctl.Range, comments []commentctl.DisplayComment) commentctl.ThreadHandle {
	t := &Thread{host: h, URI: uri, Range: r, Comments: comments}

	l, err := diffview.ParseLocator(uri)
	if err != nil {
		log.Warn().Err(err).Str("uri", uri).Msg("thread created on an unknown document")
	} else {
		t.Path = l.Path
		t.LHS = l.LHS
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.threads = append(h.threads, t)

	return t
}

// All returns every thread ever created, disposed ones included.
func (h *Host) All() []*Thread {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.threads)
}

// Live returns the threads that have not been disposed, in creation order.
func (h *Host) Live() []*Thread {
	h.mu.Lock()
	defer h.mu.Unlock()

	live := []*Thread{}
	for _, t := range h.threads {
		if t.Disposals == 0 {
			live = append(live, t)
		}
	}
	return live
}

// LiveOn returns the live threads of one side of a file.
func (h *Host) LiveOn(path string, lhs bool) []*Thread {
	result := []*Thread{}
	for _, t := range h.Live() {
		if t.Path == path && t.LHS == lhs {
			result = append(result, t)
		}
	}
	return result
}
