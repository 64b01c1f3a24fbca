package bounty

import "math/bits"

// CheckedAdd returns a+b or ErrArithmeticOverflow when the sum wraps.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func CheckedIncrement(counter uint64) (uint64, error) {
	return CheckedAdd(counter, 1)
}
