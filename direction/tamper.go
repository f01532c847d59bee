package direction

var (
	_ Tamperer = FlipBit
	_ Tamperer = Truncate

	// FlipBit corrupts a datagram by inverting exactly one bit chosen uniformly at
	// random.
	FlipBit = TamperFunc(flipBit)
	// Truncate corrupts a datagram by removing a suffix of random length, always
	// keeping at least one byte.
	Truncate = TamperFunc(truncate)
)

// Tamperer corrupts datagrams selected for tampering. Implementations must not
// modify the given payload in place; the returned slice is queued instead.
type Tamperer interface {
	Tamper(payload []byte, rng Rand) []byte
}

// TamperFunc adapts a function to the Tamperer interface.
type TamperFunc func(payload []byte, rng Rand) []byte

func (f TamperFunc) Tamper(payload []byte, rng Rand) []byte { return f(payload, rng) }

func flipBit(payload []byte, rng Rand) []byte {
	if len(payload) == 0 {
		return payload
	}
	out := append([]byte(nil), payload...)
	bit := rng.Intn(len(out) * 8)
	out[bit/8] ^= 1 << (bit % 8)
	return out
}

func truncate(payload []byte, rng Rand) []byte {
	if len(payload) <= 1 {
		return payload
	}
	keep := 1 + rng.Intn(len(payload)-1)
	return append([]byte(nil), payload[:keep]...)
}
