package blueprint

import "sync"

// Gate holds the administrative passphrase. It guards against accidental schema
// changes and is not a security boundary: the passphrase is kept in plain text.
type Gate struct {
	mu         sync.RWMutex
	passphrase string
	configured bool
}

// NewGate returns a gate without a passphrase. Authorize fails with ErrNotConfigured until Configure is called.
func NewGate() *Gate {
	return &Gate{}
}

// Configure sets the passphrase, replacing any previous one.
func (g *Gate) Configure(passphrase string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.passphrase = passphrase
	g.configured = true
}

// Configured reports whether a passphrase has been set.
func (g *Gate) Configured() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.configured
}

// Authorize reports whether candidate equals the configured passphrase.
func (g *Gate) Authorize(candidate string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.configured {
		return false, ErrNotConfigured
	}
	return candidate == g.passphrase, nil
}

// require turns a failed authorization into an error
func (g *Gate) require(candidate string) error {
	ok, err := g.Authorize(candidate)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}
