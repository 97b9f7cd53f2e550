package suspicion

import "math"

// Compare orders two score sets by descending suspiciousness: Tarantula first,
// then SBI, Jaccard and Ochiai as successive tie-breakers.
// It returns a negative number when a ranks before b, a positive number when
// b ranks before a, and zero when every key ties.
//
// NaN is the lowest value for every key, so a NaN score always ranks after
// any number (including -Inf) and ties with another NaN.
func Compare(a, b Scores) int {
	ak, bk := a.Keys(), b.Keys()

	for i := range ak {
		if c := compareDesc(ak[i], bk[i]); c != 0 {
			return c
		}
	}

	return 0
}

// Less reports whether a ranks strictly before b.
func Less(a, b Scores) bool {
	return Compare(a, b) < 0
}

func compareDesc(x, y float64) int {
	xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)

	switch {
	case xNaN && yNaN:
		return 0
	case xNaN:
		return 1
	case yNaN:
		return -1
	case x > y:
		return -1
	case x < y:
		return 1
	default:
		return 0
	}
}
