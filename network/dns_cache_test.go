package network

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUDNSCache_Basic(t *testing.T) {
	cache := NewLRUDNSCache(3)

	cache.Set("example.com", []string{"1.2.3.4"}, 300)
	entry := cache.Get("example.com")

	if entry == nil {
		t.Fatal("Expected entry, got nil")
	}
	if len(entry.IPs) != 1 || entry.IPs[0] != "1.2.3.4" {
		t.Errorf("Expected [1.2.3.4], got %v", entry.IPs)
	}
}

func TestLRUDNSCache_Expiration(t *testing.T) {
	cache := NewLRUDNSCache(10)

	cache.Set("short-ttl.com", []string{"1.1.1.1"}, 1)

	if cache.Get("short-ttl.com") == nil {
		t.Error("Entry should exist immediately after set")
	}

	time.Sleep(1100 * time.Millisecond)

	if cache.Get("short-ttl.com") != nil {
		t.Error("Entry should be expired and return nil")
	}
}

func TestLRUDNSCache_LRUEviction(t *testing.T) {
	cache := NewLRUDNSCache(3)

	cache.Set("host1", []string{"1.0.0.1"}, 300)
	cache.Set("host2", []string{"1.0.0.2"}, 300)
	cache.Set("host3", []string{"1.0.0.3"}, 300)

	if cache.Size() != 3 {
		t.Errorf("Expected size 3, got %d", cache.Size())
	}

	// host1 самый старый
	cache.Set("host4", []string{"1.0.0.4"}, 300)

	if cache.Size() != 3 {
		t.Errorf("Expected size 3 after eviction, got %d", cache.Size())
	}
	if cache.Get("host1") != nil {
		t.Error("host1 should have been evicted")
	}
	for _, host := range []string{"host2", "host3", "host4"} {
		if cache.Get(host) == nil {
			t.Errorf("%s should still exist", host)
		}
	}
	if evictions := cache.GetMetrics().Evictions; evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", evictions)
	}
}

func TestLRUDNSCache_GetRefreshesOrder(t *testing.T) {
	cache := NewLRUDNSCache(2)

	cache.Set("host1", []string{"1.0.0.1"}, 300)
	cache.Set("host2", []string{"1.0.0.2"}, 300)
	cache.Get("host1")
	cache.Set("host3", []string{"1.0.0.3"}, 300)

	if cache.Get("host1") == nil {
		t.Error("host1 was used recently and should stay")
	}
	if cache.Get("host2") != nil {
		t.Error("host2 should have been evicted")
	}
}

func TestLRUDNSCache_UpdateExisting(t *testing.T) {
	cache := NewLRUDNSCache(10)

	cache.Set("example.com", []string{"1.1.1.1"}, 300)
	cache.Set("example.com", []string{"2.2.2.2", "3.3.3.3"}, 300)

	if cache.Size() != 1 {
		t.Errorf("Expected size 1, got %d", cache.Size())
	}

	entry := cache.Get("example.com")
	if entry == nil || len(entry.IPs) != 2 || entry.IPs[0] != "2.2.2.2" {
		t.Errorf("Expected updated entry, got %v", entry)
	}
}

func TestLRUDNSCache_Metrics(t *testing.T) {
	cache := NewLRUDNSCache(10)

	cache.Set("example.com", []string{"1.1.1.1"}, 300)
	cache.Get("example.com")
	cache.Get("example.com")
	cache.Get("missing.com")

	metrics := cache.GetMetrics()

	if metrics.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", metrics.Hits)
	}
	if metrics.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", metrics.Misses)
	}
	if metrics.Size != 1 || metrics.MaxSize != 10 {
		t.Errorf("Unexpected size metrics %+v", metrics)
	}
}

func TestLRUDNSCache_CleanupExpired(t *testing.T) {
	cache := NewLRUDNSCache(10)

	cache.Set("short.com", []string{"1.1.1.1"}, 1)
	cache.Set("long.com", []string{"2.2.2.2"}, 300)

	if removed := cache.CleanupExpired(time.Now().Add(2 * time.Second)); removed != 1 {
		t.Errorf("Expected 1 removed entry, got %d", removed)
	}
	if cache.Size() != 1 {
		t.Errorf("Expected size 1, got %d", cache.Size())
	}
}

func TestLRUDNSCache_Concurrent(t *testing.T) {
	cache := NewLRUDNSCache(50)
	wg := &sync.WaitGroup{}

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				host := fmt.Sprintf("host-%d-%d", id, j%20)
				cache.Set(host, []string{"1.1.1.1"}, 300)
				cache.Get(host)
			}
		}(i)
	}

	wg.Wait()

	if size := cache.Size(); size > 50 {
		t.Errorf("Cache overflow: %d", size)
	}
}
