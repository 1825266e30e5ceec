package formation

import "math/rand/v2"

// GroupSize is the number of members every trio starts with.
const GroupSize = 3

// RemainderPolicy decides where the members left over after slicing full
// groups go. groups holds the full groups in shuffle order; leftover holds
// fewer than GroupSize ids. The returned groups must cover every id exactly
// once.
type RemainderPolicy func(groups [][]string, leftover []string) [][]string

// AbsorbIntoLast appends the leftover members to the last group, so one
// leftover makes a group of 4 and two make a group of 5. No group ever
// drops below GroupSize.
func AbsorbIntoLast(groups [][]string, leftover []string) [][]string {
	if len(leftover) == 0 || len(groups) == 0 {
		return groups
	}
	last := len(groups) - 1
	groups[last] = append(groups[last], leftover...)
	return groups
}

// Shuffle permutes ids in place with a Fisher-Yates shuffle driven by r,
// so every ordering is equally likely. A nil r uses the package-level
// generator.
func Shuffle(r *rand.Rand, ids []string) {
	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}
	for i := len(ids) - 1; i > 0; i-- {
		j := intN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// Partition slices ids, in order, into len(ids)/size groups of size and
// hands the remainder to policy. It returns nil when there are not enough
// ids for a single group.
func Partition(ids []string, size int, policy RemainderPolicy) [][]string {
	if size <= 0 || len(ids) < size {
		return nil
	}
	if policy == nil {
		policy = AbsorbIntoLast
	}

	full := len(ids) / size
	groups := make([][]string, 0, full)
	for i := 0; i < full; i++ {
		g := make([]string, size, size+2)
		copy(g, ids[i*size:(i+1)*size])
		groups = append(groups, g)
	}
	return policy(groups, ids[full*size:])
}
