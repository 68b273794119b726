// Package staff resolves staff identifiers to display names. The lookup is
// passed explicitly to whoever needs it; nothing in here is a singleton.
package staff

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/auricare/calendar-gateway/internal/redisx"
	"github.com/auricare/calendar-gateway/internal/upstream"
)

const cacheKey = "staff:directory"

// Only hearing-care roles appear on the calendar.
var calendarRoles = map[string]bool{
	"audiologist":        true,
	"senior audiologist": true,
}

// Lookup answers "what is the display name for this staff ID".
type Lookup interface {
	NameFor(id string) (string, bool)
}

// MapLookup is the plain implementation used everywhere, tests included.
type MapLookup map[string]string

func (m MapLookup) NameFor(id string) (string, bool) {
	name, ok := m[id]
	return name, ok
}

// Fetcher is the slice of the upstream client the directory needs.
type Fetcher interface {
	ListStaff(ctx context.Context) ([]upstream.StaffMember, error)
}

// Cache is the slice of redisx.KV the directory needs. A nil Cache is valid
// and simply disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type Directory struct {
	fetch Fetcher
	cache Cache
	ttl   time.Duration
}

func NewDirectory(fetch Fetcher, cache Cache, ttl time.Duration) *Directory {
	return &Directory{fetch: fetch, cache: cache, ttl: ttl}
}

// Snapshot builds the ID to name lookup, serving from the Redis cache when it
// holds a fresh copy. A cache outage degrades to a direct upstream fetch.
func (d *Directory) Snapshot(ctx context.Context) (Lookup, error) {
	if d.cache != nil {
		if cached, err := d.cache.Get(ctx, cacheKey); err == nil {
			var m MapLookup
			if json.Unmarshal([]byte(cached), &m) == nil {
				return m, nil
			}
			log.Printf("staff directory cache holds malformed JSON, refetching")
		} else if !errors.Is(err, redisx.ErrMiss) {
			log.Printf("staff directory cache read failed: %v", err)
		}
	}

	members, err := d.fetch.ListStaff(ctx)
	if err != nil {
		return nil, err
	}

	m := BuildLookup(members)

	if d.cache != nil {
		if data, err := json.Marshal(m); err == nil {
			if err := d.cache.Set(ctx, cacheKey, string(data), d.ttl); err != nil {
				log.Printf("staff directory cache write failed: %v", err)
			}
		}
	}

	return m, nil
}

// BuildLookup filters the raw directory to calendar roles and keys it by ID.
func BuildLookup(members []upstream.StaffMember) MapLookup {
	m := make(MapLookup)
	for _, s := range members {
		if calendarRoles[strings.ToLower(s.Role)] {
			m[s.ID] = s.Name
		}
	}
	return m
}
