package morton

const (
	radixBits   = 6
	radixSize   = 1 << radixBits
	radixMask   = radixSize - 1
	radixPasses = KeyBits / radixBits
)

// Sort orders keys ascending with a least-significant-digit radix sort
// (6-bit digits, 5 passes covering the 30 key bits). Each pass is stable.
// Keys must not carry the empty tag.
func Sort(keys []Key) {
	SortInto(keys, make([]Key, len(keys)))
}

// SortInto is Sort with a caller-provided scratch buffer of at least
// len(keys) elements.
func SortInto(keys, scratch []Key) {
	if len(scratch) < len(keys) {
		panic("morton: scratch buffer shorter than keys")
	}
	src, dst := keys, scratch[:len(keys)]
	var count [radixSize]int
	for pass := 0; pass < radixPasses; pass++ {
		shift := uint(pass * radixBits)
		count = [radixSize]int{}
		for _, k := range src {
			count[(k>>shift)&radixMask]++
		}
		// exclusive prefix sum -> first output slot of each digit
		sum := 0
		for d := range count {
			c := count[d]
			count[d] = sum
			sum += c
		}
		for _, k := range src {
			d := (k >> shift) & radixMask
			dst[count[d]] = k
			count[d]++
		}
		src, dst = dst, src
	}
	// an odd pass count leaves the result in scratch
	if radixPasses%2 == 1 {
		copy(keys, src)
	}
}

// IsSorted reports whether keys are non-decreasing.
func IsSorted(keys []Key) bool {
	for i := 1; i < len(keys); i++ {
		if keys[i] < keys[i-1] {
			return false
		}
	}
	return true
}
