package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionedRNG_SameSeedSameSequence(t *testing.T) {
	for _, seed := range []int64{42, 0, -1, math.MaxInt64, math.MinInt64} {
		a, b := NewPartitionedRNG(seed), NewPartitionedRNG(seed)
		for i := 0; i < 5; i++ {
			assert.Equal(t, a.ForSubsystem(SubsystemOrders).Int63(), b.ForSubsystem(SubsystemOrders).Int63(), "seed %d draw %d", seed, i)
		}
		assert.Equal(t, seed, a.Seed())
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// GIVEN two stream sets with the same seed
	a, b := NewPartitionedRNG(42), NewPartitionedRNG(42)

	// WHEN one of them draws extra order contents
	for i := 0; i < 10; i++ {
		a.ForSubsystem(SubsystemOrders).Intn(100)
	}

	// THEN the arrival sequence is unaffected
	for i := 0; i < 5; i++ {
		assert.Equal(t, b.ForSubsystem(SubsystemArrivals).Float64(), a.ForSubsystem(SubsystemArrivals).Float64(), "draw %d", i)
	}
}

func TestPartitionedRNG_ArrivalsUseRunSeed(t *testing.T) {
	arrivals := NewPartitionedRNG(42).ForSubsystem(SubsystemArrivals)
	direct := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		assert.Equal(t, direct.Float64(), arrivals.Float64())
	}
}

func TestPartitionedRNG_OrdersUseDerivedSeed(t *testing.T) {
	orders := NewPartitionedRNG(42).ForSubsystem(SubsystemOrders)
	direct := rand.New(rand.NewSource(42 ^ fnv1a64("orders")))
	assert.Equal(t, direct.Int63(), orders.Int63())
}

func TestPartitionedRNG_CachesStreamsLazily(t *testing.T) {
	p := NewPartitionedRNG(42)
	assert.Empty(t, p.streams)
	assert.Same(t, p.ForSubsystem(SubsystemOrders), p.ForSubsystem(SubsystemOrders))
	assert.Len(t, p.streams, 1)
	assert.NotEqual(t, fnv1a64(string(SubsystemArrivals)), fnv1a64(string(SubsystemOrders)))
}
