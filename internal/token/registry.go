package token

import "sync"

// Registry tracks the refresh tokens that are currently honored. A refresh
// token is only usable while it is a member, regardless of its signature.
// The set lives in process memory only: after a restart every previously
// issued refresh token is unusable, which is intentional.
type Registry struct {
	mu       sync.Mutex
	tokens   map[string]struct{}
	verifier *Signer
}

func NewRegistry(verifier *Signer) *Registry {
	return &Registry{
		tokens:   make(map[string]struct{}),
		verifier: verifier,
	}
}

func (r *Registry) Add(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = struct{}{}
}

func (r *Registry) Contains(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tokens[token]
	return ok
}

// RevokeUser removes every held token whose decoded payload matches username.
// Tokens that fail to decode are kept: only an explicit username match may
// remove an entry. Returns the number of tokens removed.
func (r *Registry) RevokeUser(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for t := range r.tokens {
		claims, err := r.verifier.Verify(t)
		if err != nil {
			continue
		}
		if claims.Username == username {
			delete(r.tokens, t)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
