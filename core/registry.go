package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryAuthorityRegistry maps authority hosts to the client that speaks to
// them. Sovereign-cloud deployments register one client per endpoint family
// (login.microsoftonline.com, login.microsoftonline.us, ...).
type MemoryAuthorityRegistry struct {
	mu      sync.RWMutex
	clients map[string]AuthorityClient
}

func NewMemoryAuthorityRegistry() *MemoryAuthorityRegistry {
	return &MemoryAuthorityRegistry{clients: make(map[string]AuthorityClient)}
}

func (r *MemoryAuthorityRegistry) Register(host string, client AuthorityClient) error {
	if r == nil {
		return fmt.Errorf("core: authority registry is nil")
	}
	if client == nil {
		return fmt.Errorf("core: authority client is nil")
	}
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return fmt.Errorf("core: authority host is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[host]; exists {
		return fmt.Errorf("core: authority host already registered: %s", host)
	}
	r.clients[host] = client
	return nil
}

// Resolve finds the client registered for the authority's host. The authority
// is a full URL; matching is by lowercased host only.
func (r *MemoryAuthorityRegistry) Resolve(authority string) (AuthorityClient, bool) {
	if r == nil {
		return nil, false
	}
	host, err := AuthorityHost(authority)
	if err != nil || host == "" {
		return nil, false
	}
	r.mu.RLock()
	client, ok := r.clients[host]
	r.mu.RUnlock()
	return client, ok
}

func (r *MemoryAuthorityRegistry) Hosts() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	hosts := make([]string, 0, len(r.clients))
	for host := range r.clients {
		hosts = append(hosts, host)
	}
	r.mu.RUnlock()
	sort.Strings(hosts)
	return hosts
}

var _ AuthorityRegistry = (*MemoryAuthorityRegistry)(nil)
