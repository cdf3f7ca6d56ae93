package httputil

import (
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// browserProfiles are the user-agent strings rotated across identities.
// Each maps to a current desktop Chrome release; distributor endpoints
// reject obviously stale or headless agents.
var browserProfiles = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36",
}

// Identity is one request identity: an HTTP client with its own cookie-free
// transport plus the headers that make consecutive requests look like they
// come from one browser session.
type Identity struct {
	ID      string // Unique session identifier, useful for log correlation
	Client  *http.Client
	Headers map[string]string
}

// Pool hands out request identities for distributor clients.
//
// Identities are served round-robin for ordinary requests; AcquireFresh
// mints a brand-new identity and adds it to the rotation, which the retry
// loop uses to decorrelate consecutive failed attempts.
//
// All methods are safe for concurrent use.
type Pool struct {
	timeout time.Duration

	mu         sync.Mutex
	identities []*Identity
	next       int
}

// NewPool creates an identity pool whose clients use the given timeout.
func NewPool(timeout time.Duration) *Pool {
	return &Pool{timeout: timeout}
}

// Acquire returns the next identity in rotation, creating the first one on
// demand.
func (p *Pool) Acquire() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.identities) == 0 {
		p.identities = append(p.identities, p.mint())
	}
	id := p.identities[p.next%len(p.identities)]
	p.next++
	return id
}

// AcquireFresh mints a new identity with a fresh transport and browser
// profile and adds it to the rotation. Retry loops call this between
// attempts so a blocked session is not reused.
func (p *Pool) AcquireFresh() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.mint()
	p.identities = append(p.identities, id)
	return id
}

// Size returns the number of identities currently in rotation.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.identities)
}

// Close drops all identities and closes their idle connections.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range p.identities {
		id.Client.CloseIdleConnections()
	}
	p.identities = nil
	p.next = 0
}

func (p *Pool) mint() *Identity {
	profile := browserProfiles[rand.IntN(len(browserProfiles))]
	return &Identity{
		ID: uuid.NewString(),
		Client: &http.Client{
			Timeout: p.timeout,
			// A dedicated transport so connection reuse never crosses identities.
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		Headers: map[string]string{
			"User-Agent":      profile,
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "en-US,en;q=0.9",
		},
	}
}
