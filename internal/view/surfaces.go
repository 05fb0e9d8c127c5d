package view

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tunafishyummy/kosen-website/internal/domain"
	"github.com/tunafishyummy/kosen-website/internal/pricing"
)

// fragmentTTL bounds how long a fragment outlives its last render. It
// matches the session TTL of the persistence backends, so a fragment
// never outlives the cart it was derived from.
const fragmentTTL = 30 * time.Minute

// fragments holds the latest rendered content per session, served to
// clients as plain-text view fragments. Entries are released when the
// session's cart is cleared and swept once their TTL lapses, so
// abandoned sessions do not accumulate.
type fragments struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	content   map[string]fragmentEntry
	lastSweep time.Time
}

type fragmentEntry struct {
	body    string
	touched time.Time
}

func newFragments() fragments {
	return fragments{
		ttl:     fragmentTTL,
		now:     time.Now,
		content: make(map[string]fragmentEntry),
	}
}

func (f *fragments) set(sessionID, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	f.sweep(now)
	f.content[sessionID] = fragmentEntry{body: body, touched: now}
}

// sweep deletes entries whose TTL has lapsed. Runs at most once per TTL
// window so writes stay cheap.
func (f *fragments) sweep(now time.Time) {
	if now.Sub(f.lastSweep) < f.ttl {
		return
	}
	for id, e := range f.content {
		if now.Sub(e.touched) > f.ttl {
			delete(f.content, id)
		}
	}
	f.lastSweep = now
}

// Fragment returns the last rendered content for the session. An
// expired entry is deleted and reported as missing, which sends the
// caller through the on-demand render path.
func (f *fragments) Fragment(sessionID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.content[sessionID]
	if !ok {
		return "", false
	}
	if f.now().Sub(e.touched) > f.ttl {
		delete(f.content, sessionID)
		return "", false
	}
	return e.body, true
}

// Drop releases the session's fragment.
func (f *fragments) Drop(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.content, sessionID)
}

// Badge shows the total quantity across all lines.
type Badge struct {
	fragments
}

func NewBadge() *Badge {
	return &Badge{fragments: newFragments()}
}

func (b *Badge) Name() string  { return "badge" }
func (b *Badge) Mounted() bool { return true }

func (b *Badge) Render(sessionID string, cart domain.Cart) error {
	b.set(sessionID, strconv.Itoa(cart.Count()))
	return nil
}

// Listing is the cart page: one row per line with unit price, quantity
// and row subtotal.
type Listing struct {
	fragments
	fmtr *pricing.Formatter
}

func NewListing(fmtr *pricing.Formatter) *Listing {
	return &Listing{fragments: newFragments(), fmtr: fmtr}
}

func (l *Listing) Name() string  { return "listing" }
func (l *Listing) Mounted() bool { return true }

func (l *Listing) Render(sessionID string, cart domain.Cart) error {
	if cart.IsEmpty() {
		l.set(sessionID, "Your cart is empty.\n")
		return nil
	}

	var sb strings.Builder
	for _, item := range cart {
		label := item.Title
		if item.Size != "" {
			label = fmt.Sprintf("%s (Size: %s)", item.Title, item.Size)
		}
		fmt.Fprintf(&sb, "%s\t%s x %d\t%s\n",
			label,
			l.format(item.Price),
			item.Qty,
			l.format(item.Subtotal()))
	}
	fmt.Fprintf(&sb, "Total: %s\n", l.format(cart.Total()))
	l.set(sessionID, sb.String())
	return nil
}

func (l *Listing) format(v float64) string {
	if l.fmtr != nil {
		return l.fmtr.Format(v)
	}
	return pricing.Format(v)
}

// Summary is the checkout page: per-line subtotals and the grand total.
type Summary struct {
	fragments
	fmtr *pricing.Formatter
}

func NewSummary(fmtr *pricing.Formatter) *Summary {
	return &Summary{fragments: newFragments(), fmtr: fmtr}
}

func (s *Summary) Name() string  { return "summary" }
func (s *Summary) Mounted() bool { return true }

func (s *Summary) Render(sessionID string, cart domain.Cart) error {
	if cart.IsEmpty() {
		s.set(sessionID, "Your cart is empty.\n")
		return nil
	}

	var sb strings.Builder
	for _, item := range cart {
		label := item.Title
		if item.Size != "" {
			label = fmt.Sprintf("%s (%s)", item.Title, item.Size)
		}
		fmt.Fprintf(&sb, "%s\t%s\n", label, s.format(item.Subtotal()))
	}
	fmt.Fprintf(&sb, "Total:\t%s\n", s.format(cart.Total()))
	s.set(sessionID, sb.String())
	return nil
}

func (s *Summary) format(v float64) string {
	if s.fmtr != nil {
		return s.fmtr.Format(v)
	}
	return pricing.Format(v)
}
