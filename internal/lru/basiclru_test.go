package lru

import "testing"

func TestBasicLRUAdd(t *testing.T) {
	cache := NewBasicLRU[int, int](128)
	for i := 0; i < 256; i++ {
		evicted := cache.Add(i, i)
		if i < 128 && evicted {
			t.Fatalf("%d should not be evicted", i)
		} else if i >= 128 && !evicted {
			t.Fatalf("%d should be evicted", i)
		}
	}
	if cache.Len() != 128 {
		t.Fatalf("bad len: %v", cache.Len())
	}
}

func TestBasicLRUContains(t *testing.T) {
	cache := NewBasicLRU[int, int](2)
	cache.Add(1, 1)
	cache.Add(2, 2)
	if !cache.Contains(1) {
		t.Errorf("1 should be in the cache")
	}
	cache.Add(3, 3)
	if cache.Contains(1) {
		t.Errorf("1 should have been evicted")
	}
}

func TestBasicLRUGetUpdatesRecency(t *testing.T) {
	cache := NewBasicLRU[int, int](2)
	cache.Add(1, 1)
	cache.Add(2, 2)
	cache.Get(1)
	cache.Add(3, 3)
	if _, ok := cache.Get(2); ok {
		t.Errorf("2 should have been evicted by recency policy")
	}
	if _, ok := cache.Get(1); !ok {
		t.Errorf("1 should still be present")
	}
}

func TestBasicLRUKeysOldestFirst(t *testing.T) {
	cache := NewBasicLRU[int, int](3)
	cache.Add(1, 1)
	cache.Add(2, 2)
	cache.Add(3, 3)
	keys := cache.Keys()
	want := []int{1, 2, 3}
	for i, k := range keys {
		if k != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestBasicLRUZeroCapacity(t *testing.T) {
	cache := NewBasicLRU[int, int](0)
	cache.Add(1, 1)
	cache.Add(2, 2)
	if cache.Len() != 1 {
		t.Fatalf("zero capacity should behave as capacity 1, got len %d", cache.Len())
	}
}
