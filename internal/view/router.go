// Package view tracks which kiosk page is visible.
package view

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownPage is returned for names outside the fixed page set.
var ErrUnknownPage = errors.New("unknown page")

// Page is one of the kiosk's pages.
type Page string

const (
	Live      Page = "live"
	Register  Page = "register"
	Dashboard Page = "dashboard"
)

var pages = []Page{Live, Register, Dashboard}

// Pages returns the fixed page set in display order.
func Pages() []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	return out
}

// ParsePage validates name against the page set.
func ParsePage(name string) (Page, error) {
	for _, p := range pages {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, name)
}

// Router keeps exactly one page visible. Any page can be shown from any
// other; there is no history.
type Router struct {
	mu      sync.RWMutex
	current Page
}

// NewRouter starts on the live page.
func NewRouter() *Router {
	return &Router{current: Live}
}

// ShowPage makes name the visible page and hides the others. Unknown names
// leave the current page unchanged.
func (r *Router) ShowPage(name string) (Page, error) {
	page, err := ParsePage(name)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.current = page
	r.mu.Unlock()
	return page, nil
}

// Current returns the visible page.
func (r *Router) Current() Page {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Visible reports whether page is the visible one.
func (r *Router) Visible(page Page) bool {
	return r.Current() == page
}
