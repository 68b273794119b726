package staff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/auricare/calendar-gateway/internal/redisx"
	"github.com/auricare/calendar-gateway/internal/upstream"
)

type fakeFetcher struct {
	members []upstream.StaffMember
	err     error
	calls   int
}

func (f *fakeFetcher) ListStaff(ctx context.Context) ([]upstream.StaffMember, error) {
	f.calls++
	return f.members, f.err
}

type memCache struct {
	data map[string]string
	fail bool
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	if c.fail {
		return "", errors.New("cache down")
	}
	v, ok := c.data[key]
	if !ok {
		return "", redisx.ErrMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.fail {
		return errors.New("cache down")
	}
	c.data[key] = value
	return nil
}

var roster = []upstream.StaffMember{
	{ID: "st-1", Name: "Dr. Brandt", Role: "audiologist"},
	{ID: "st-2", Name: "A. Fischer", Role: "Senior Audiologist"},
	{ID: "st-3", Name: "J. Weiss", Role: "reception"},
	{ID: "st-4", Name: "K. Vogel", Role: "inventory clerk"},
}

func TestBuildLookupFiltersRoles(t *testing.T) {
	m := BuildLookup(roster)

	if len(m) != 2 {
		t.Fatalf("lookup has %d entries, want 2", len(m))
	}
	if name, ok := m.NameFor("st-1"); !ok || name != "Dr. Brandt" {
		t.Fatalf("st-1 = %q, %v", name, ok)
	}
	if name, ok := m.NameFor("st-2"); !ok || name != "A. Fischer" {
		t.Fatalf("senior audiologist missing: %q, %v", name, ok)
	}
	if _, ok := m.NameFor("st-3"); ok {
		t.Fatal("reception staff must not be in the calendar lookup")
	}
}

func TestSnapshotCachesResult(t *testing.T) {
	fetch := &fakeFetcher{members: roster}
	cache := &memCache{data: map[string]string{}}
	d := NewDirectory(fetch, cache, time.Minute)

	for i := 0; i < 3; i++ {
		m, err := d.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		if _, ok := m.NameFor("st-1"); !ok {
			t.Fatal("lookup missing st-1")
		}
	}

	if fetch.calls != 1 {
		t.Fatalf("upstream fetched %d times, want 1 (cache hits after)", fetch.calls)
	}
}

func TestSnapshotDegradesWhenCacheDown(t *testing.T) {
	fetch := &fakeFetcher{members: roster}
	d := NewDirectory(fetch, &memCache{fail: true}, time.Minute)

	m, err := d.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot with cache down: %v", err)
	}
	if _, ok := m.NameFor("st-2"); !ok {
		t.Fatal("lookup incomplete in degraded mode")
	}
}

func TestSnapshotUpstreamError(t *testing.T) {
	fetch := &fakeFetcher{err: errors.New("backend down")}
	d := NewDirectory(fetch, nil, time.Minute)

	if _, err := d.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error when upstream fails and no cache exists")
	}
}
