package combinatorial

import "sync"

// maxN bounds the Pascal's-triangle table at the marker width ceiling the
// spec imposes on nu (marker_width <= 128).
const maxN = 128

var (
	warmOnce sync.Once
	binom    [maxN + 1][maxN + 1]U128
)

// Warm populates the binomial coefficient table. The b-field create path
// calls this once before any reader can see the file, so concurrent readers
// never race on lazily-initialized table construction (see bfield.Create).
// It is safe, and cheap, to call more than once.
func Warm() {
	warmOnce.Do(buildTable)
}

func buildTable() {
	for n := 0; n <= maxN; n++ {
		binom[n][0] = FromUint64(1)
		for k := 1; k <= n; k++ {
			if k == n {
				binom[n][k] = FromUint64(1)
				continue
			}
			binom[n][k] = binom[n-1][k-1].Add(binom[n-1][k])
		}
	}
}

// choose returns C(n, k), or zero if the arguments fall outside the table's
// domain (k > n, or either negative).
func choose(n, k int) U128 {
	if k < 0 || n < 0 || k > n || n > maxN {
		return Zero
	}
	Warm()
	return binom[n][k]
}
