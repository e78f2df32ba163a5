package reactor

import (
	"math/rand"
	"sync"
	"time"
)

// Dice supplies every random decision the scheduler makes. Reactor count,
// reactor identities, the like/comment coin flips and the firing delay draw
// from separate sources so each can be seeded (or faked) independently in
// tests.
type Dice interface {
	// Count returns a uniform draw from {1..n}.
	Count(n int) int
	// Perm returns a random permutation of [0,n), used to sample reactors
	// without replacement.
	Perm(n int) []int
	// Coin reports true with probability p.
	Coin(p float64) bool
	// Delay returns a uniform draw from [min, max).
	Delay(min, max time.Duration) time.Duration
}

// seededDice is the production Dice: four independent math/rand sources
// behind one mutex (coin flips happen on executor goroutines).
type seededDice struct {
	mu    sync.Mutex
	count *rand.Rand
	perm  *rand.Rand
	coin  *rand.Rand
	delay *rand.Rand
}

// NewDice derives the four sources from one seed.
func NewDice(seed int64) Dice {
	return NewDiceFrom(seed, seed+1, seed+2, seed+3)
}

// NewDiceFrom seeds each source separately.
func NewDiceFrom(countSeed, permSeed, coinSeed, delaySeed int64) Dice {
	return &seededDice{
		count: rand.New(rand.NewSource(countSeed)),
		perm:  rand.New(rand.NewSource(permSeed)),
		coin:  rand.New(rand.NewSource(coinSeed)),
		delay: rand.New(rand.NewSource(delaySeed)),
	}
}

// SystemDice seeds from the wall clock.
func SystemDice() Dice {
	return NewDice(time.Now().UnixNano())
}

func (d *seededDice) Count(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n <= 1 {
		return 1
	}
	return d.count.Intn(n) + 1
}

func (d *seededDice) Perm(n int) []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.perm.Perm(n)
}

func (d *seededDice) Coin(p float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.coin.Float64() < p
}

func (d *seededDice) Delay(min, max time.Duration) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if max <= min {
		return min
	}
	return min + time.Duration(d.delay.Int63n(int64(max-min)))
}
