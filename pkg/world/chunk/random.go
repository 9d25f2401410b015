package chunk

// Random is a small deterministic LCG for per-chunk generation decisions.
// Identical seeds always produce identical sequences.
type Random struct {
	state int64
}

// NewRandom seeds a Random directly.
func NewRandom(seed int64) *Random {
	return &Random{state: seed}
}

// CarverRandom seeds the random used by the carver at index in the list
// configured for the chunk at pos.
func CarverRandom(worldSeed int64, index int, pos Pos) *Random {
	r := NewRandom(worldSeed + int64(index))
	a := r.Next() | 1
	b := r.Next() | 1
	return NewRandom(int64(pos.X)*a ^ int64(pos.Z)*b ^ (worldSeed + int64(index)))
}

// PopulationRandom seeds the random used to decorate the chunk whose first
// block is (startX, startZ).
func PopulationRandom(worldSeed int64, startX, startZ int) *Random {
	return NewRandom(worldSeed ^ (int64(startX)*341873128712 + int64(startZ)*132897987541))
}

// Next advances the generator.
func (r *Random) Next() int64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

// IntN returns a value in [0, n). n must be positive.
func (r *Random) IntN(n int) int {
	v := int(r.Next()>>33) % n
	if v < 0 {
		v = -v
	}
	return v
}

// Float64 returns a value in [0, 1).
func (r *Random) Float64() float64 {
	return float64(uint64(r.Next())>>11) / (1 << 53)
}
