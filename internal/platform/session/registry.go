package session

import "fmt"

// Registry maps each login method to its strategy
type Registry struct {
	authenticators map[Method]Authenticator
}

// NewRegistry creates a registry. Strategies for unknown methods and duplicates are rejected.
func NewRegistry(auths ...Authenticator) (*Registry, error) {
	r := &Registry{authenticators: make(map[Method]Authenticator, len(auths))}
	for _, a := range auths {
		m := a.Method()
		if !m.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, m)
		}
		if _, exists := r.authenticators[m]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAuthenticator, m)
		}
		r.authenticators[m] = a
	}
	return r, nil
}

// Get returns the strategy for method
func (r *Registry) Get(method Method) (Authenticator, error) {
	a, ok := r.authenticators[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
	return a, nil
}

// Methods lists registered methods in canonical order
func (r *Registry) Methods() []Method {
	return r.filter(func(Authenticator) bool { return true })
}

// Available lists the registered methods a browser can log in with right now.
// Strategies backed by an unconfigured provider are left out.
func (r *Registry) Available() []Method {
	return r.filter(func(a Authenticator) bool {
		c, ok := a.(interface{ Configured() bool })
		return !ok || c.Configured()
	})
}

func (r *Registry) filter(keep func(Authenticator) bool) []Method {
	out := make([]Method, 0, len(r.authenticators))
	for _, m := range Methods() {
		if a, ok := r.authenticators[m]; ok && keep(a) {
			out = append(out, m)
		}
	}
	return out
}
