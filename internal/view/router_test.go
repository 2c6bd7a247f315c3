package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visibleCount(r *Router) int {
	n := 0
	for _, p := range Pages() {
		if r.Visible(p) {
			n++
		}
	}
	return n
}

func TestRouter_StartsOnLive(t *testing.T) {
	r := NewRouter()
	assert.Equal(t, Live, r.Current())
	assert.Equal(t, 1, visibleCount(r))
}

func TestRouter_ShowPageLeavesExactlyOneVisible(t *testing.T) {
	r := NewRouter()

	for _, name := range []string{"register", "dashboard", "live", "dashboard", "register"} {
		page, err := r.ShowPage(name)
		require.NoError(t, err)

		assert.Equal(t, Page(name), page)
		assert.True(t, r.Visible(page))
		assert.Equal(t, 1, visibleCount(r), "after %s", name)
	}
}

func TestRouter_ShowPageIdempotent(t *testing.T) {
	r := NewRouter()

	for i := 0; i < 3; i++ {
		_, err := r.ShowPage("dashboard")
		require.NoError(t, err)
		assert.Equal(t, Dashboard, r.Current())
		assert.Equal(t, 1, visibleCount(r))
	}
}

func TestRouter_UnknownPageRejected(t *testing.T) {
	r := NewRouter()
	_, err := r.ShowPage("register")
	require.NoError(t, err)

	for _, name := range []string{"", "settings", "LIVE", " live"} {
		_, err := r.ShowPage(name)
		assert.ErrorIs(t, err, ErrUnknownPage, "name %q", name)
		assert.Equal(t, Register, r.Current())
	}
}
