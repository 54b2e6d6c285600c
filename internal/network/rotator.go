package network

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"
)

var ErrNoProxies = errors.New("no proxies available")

// shouldRest reports whether a status means LinkedIn has flagged the proxy:
// 429 when throttling, 403 when blocking, 999 from its anti-automation layer.
func shouldRest(status int) bool {
	switch status {
	case 403, 429, 999:
		return true
	}
	return false
}

// Rotator hands out upstream proxies round-robin and rests any proxy that
// LinkedIn has started refusing, so a scrape session keeps rotating onto
// exits that still look clean.
type Rotator struct {
	mu       sync.Mutex
	proxies  []*proxyState
	next     int
	cooldown time.Duration
}

type proxyState struct {
	url        *url.URL
	restUntil  time.Time
	lastStatus int
}

func NewRotator(raw []string, cooldown time.Duration) (*Rotator, error) {
	r := &Rotator{cooldown: cooldown}
	for _, entry := range raw {
		u, err := url.Parse(entry)
		if err != nil {
			return nil, fmt.Errorf("proxy %q: %w", entry, err)
		}
		r.proxies = append(r.proxies, &proxyState{url: u})
	}
	return r, nil
}

// Next returns the next proxy that is not resting. It fails only when every
// proxy is resting or none are configured.
func (r *Rotator) Next() (*url.URL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for range r.proxies {
		state := r.proxies[r.next]
		r.next = (r.next + 1) % len(r.proxies)
		if now.After(state.restUntil) {
			return state.url, nil
		}
	}
	return nil, ErrNoProxies
}

// Report records the upstream status seen through a proxy, resting the proxy
// for the cooldown period when the site has flagged it.
func (r *Rotator) Report(proxy *url.URL, status int) {
	if proxy == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, state := range r.proxies {
		if state.url.String() != proxy.String() {
			continue
		}
		state.lastStatus = status
		if shouldRest(status) {
			state.restUntil = time.Now().Add(r.cooldown)
		}
		return
	}
}

// Healthy counts proxies currently in rotation.
func (r *Rotator) Healthy() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	healthy := 0
	for _, state := range r.proxies {
		if now.After(state.restUntil) {
			healthy++
		}
	}
	return healthy
}
