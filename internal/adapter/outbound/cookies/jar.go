// Package cookies provides a cookie jar that survives process
// restarts, so a signed-in session carries across CLI invocations.
package cookies

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

// Jar is an http.CookieJar backed by a JSON file. Every SetCookies
// call is written through to disk atomically.
type Jar struct {
	mu    sync.Mutex
	inner http.CookieJar
	path  string
	saved map[string][]storedCookie
}

// NewJar loads (or creates) a persistent jar at path. Expired cookies
// are dropped on load.
func NewJar(path string) (*Jar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	j := &Jar{
		inner: inner,
		path:  path,
		saved: make(map[string][]storedCookie),
	}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

// SetCookies stores cookies for the URL's origin and writes the jar
// to disk.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)

	j.mu.Lock()
	defer j.mu.Unlock()

	origin := u.Scheme + "://" + u.Host
	existing := j.saved[origin]
	for _, c := range cookies {
		existing = upsert(existing, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		})
	}
	j.saved[origin] = existing

	// Persistence is best-effort; the in-memory jar stays correct
	// even when the disk write fails.
	_ = j.save()
}

// Cookies returns the cookies to send with a request to u.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Clear empties the jar file. The in-memory jar is replaced so
// subsequent requests carry no credentials.
func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	inner, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("creating cookie jar: %w", err)
	}
	j.inner = inner
	j.saved = make(map[string][]storedCookie)
	return j.save()
}

func (j *Jar) load() error {
	data, err := os.ReadFile(j.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cookie file: %w", err)
	}

	var saved map[string][]storedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("parsing cookie file: %w", err)
	}

	now := time.Now()
	for origin, cookies := range saved {
		u, err := url.Parse(origin)
		if err != nil {
			continue
		}
		var live []storedCookie
		var restore []*http.Cookie
		for _, c := range cookies {
			if !c.Expires.IsZero() && c.Expires.Before(now) {
				continue
			}
			live = append(live, c)
			restore = append(restore, &http.Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Path:     c.Path,
				Domain:   c.Domain,
				Expires:  c.Expires,
				Secure:   c.Secure,
				HttpOnly: c.HTTPOnly,
			})
		}
		if len(restore) > 0 {
			j.inner.SetCookies(u, restore)
			j.saved[origin] = live
		}
	}
	return nil
}

// save must be called with j.mu held.
func (j *Jar) save() error {
	data, err := json.MarshalIndent(j.saved, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cookie file: %w", err)
	}

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating cookie dir: %w", err)
	}

	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing cookie file: %w", err)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing cookie file: %w", err)
	}
	return nil
}

func upsert(cookies []storedCookie, c storedCookie) []storedCookie {
	for i, existing := range cookies {
		if existing.Name == c.Name {
			cookies[i] = c
			return cookies
		}
	}
	return append(cookies, c)
}
