package query

import (
	"fmt"
	"sync"
	"testing"

	"github.com/cespare/xxhash/v2"

	"github.com/nlstn/go-filters/internal/ast"
)

func TestFilterCache_GetPut(t *testing.T) {
	c := newFilterCache(4)

	if _, ok := c.get("eq Name Bob"); ok {
		t.Fatal("expected miss on empty cache")
	}

	f := &ast.Filter{Source: "eq Name Bob"}
	c.put(f)

	got, ok := c.get("eq Name Bob")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != f {
		t.Error("expected the identical filter to be returned")
	}
}

func TestFilterCache_Eviction(t *testing.T) {
	c := newFilterCache(3)
	for i := 0; i < 3; i++ {
		c.put(&ast.Filter{Source: fmt.Sprintf("eq Id %d", i)})
	}
	if c.len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.len())
	}

	c.put(&ast.Filter{Source: "eq Id 99"})
	if c.len() != 1 {
		t.Errorf("expected whole-map eviction to leave 1 entry, got %d", c.len())
	}
	if _, ok := c.get("eq Id 0"); ok {
		t.Error("expected evicted entry to be gone")
	}
	if _, ok := c.get("eq Id 99"); !ok {
		t.Error("expected newest entry to be present")
	}
}

func TestFilterCache_Collision(t *testing.T) {
	c := newFilterCache(4)
	// simulate two sources sharing a hash
	c.items[xxhash.Sum64String("eq Name a")] = &ast.Filter{Source: "eq Name b"}

	if _, ok := c.get("eq Name a"); ok {
		t.Error("a filter for another source must not be returned")
	}
}

func TestFilterCache_Concurrent(t *testing.T) {
	c := newFilterCache(16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				src := fmt.Sprintf("eq Id %d", (i*j)%32)
				if f, ok := c.get(src); ok && f.Source != src {
					t.Errorf("got filter for %q when asking for %q", f.Source, src)
				}
				c.put(&ast.Filter{Source: src})
			}
		}(i)
	}
	wg.Wait()

	if c.len() > 16 {
		t.Errorf("cache exceeded its capacity: %d", c.len())
	}
}

func TestParser_CacheDisabled(t *testing.T) {
	p := newTestParser(t, WithCache(0))
	if p.cache != nil {
		t.Error("expected cache to be disabled for size 0")
	}
}
