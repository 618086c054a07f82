package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingCache_LookupAndAdd(t *testing.T) {
	cache := NewEmbeddingCache(10)
	cache.Add("funding rose", []float64{1, 0})

	found, missing := cache.Lookup([]string{"funding rose", "clinics opened", "clinics opened"})

	assert.Equal(t, []float64{1, 0}, found[0])
	assert.Nil(t, found[1])
	assert.Nil(t, found[2])
	assert.Equal(t, []string{"clinics opened"}, missing)
	assert.InDelta(t, 1.0/3.0, cache.HitRate(), 1e-9)
}

func TestEmbeddingCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewEmbeddingCache(2)
	cache.Add("a", []float64{1})
	time.Sleep(time.Millisecond)
	cache.Add("b", []float64{2})
	time.Sleep(time.Millisecond)

	cache.Lookup([]string{"a"})
	time.Sleep(time.Millisecond)
	cache.Add("c", []float64{3})

	assert.Equal(t, 2, cache.Size())
	found, missing := cache.Lookup([]string{"a", "b", "c"})
	assert.Equal(t, []string{"b"}, missing)
	assert.Equal(t, []float64{1}, found[0])
	assert.Equal(t, []float64{3}, found[2])
}

func TestEmbeddingCache_ZeroCapacity(t *testing.T) {
	cache := NewEmbeddingCache(0)
	cache.Add("a", []float64{1})

	assert.Equal(t, 0, cache.Size())
	assert.Equal(t, 0.0, cache.HitRate())
}
