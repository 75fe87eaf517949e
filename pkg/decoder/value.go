// Package decoder turns measurement strings into segment sums.
//
// A measurement string is made of the characters '_' (0) and 'a'..'z' (1..26).
// It is first decoded into a value list, where each maximal run of 'z' plus
// the single character that terminates it collapses into one value. The value
// list is then grouped into count-prefixed segments, each of which is summed.
package decoder

const (
	zero = '_'

	// runChar starts a run that is collapsed into a single value.
	runChar = 'z'

	// runValue is the contribution of each runChar inside a run.
	runValue = 26
)

// DecodeChar maps a single character to its value: '_' is 0 and 'a'..'z' are
// 1..26. Any other character yields a *DecodeError with position -1; callers
// that know the position use decodeCharAt.
func DecodeChar(c byte) (int, error) {
	return decodeCharAt(c, -1)
}

func decodeCharAt(c byte, pos int) (int, error) {
	switch {
	case c == zero:
		return 0, nil
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 1, nil
	default:
		return 0, &DecodeError{Char: c, Position: pos}
	}
}

// DecodeRun decodes the z-run starting at index i of s. Each leading 'z' adds
// 26; once the run ends, the terminating character (if one remains) is added
// and consumed as well. It returns the aggregate value and the index of the
// first unconsumed character.
//
// When s[i] is not 'z' the "run" is empty and DecodeRun simply decodes the
// single character at i, so it can be applied uniformly at any position.
func DecodeRun(s string, i int) (value, next int, err error) {
	for i < len(s) && s[i] == runChar {
		value += runValue
		i++
	}

	if i < len(s) {
		v, err := decodeCharAt(s[i], i)
		if err != nil {
			return 0, i, err
		}
		value += v
		i++
	}

	return value, i, nil
}

// ToValueList decodes s left to right into its value list. The whole input is
// rejected on the first invalid character.
func ToValueList(s string) ([]int, error) {
	values := make([]int, 0, len(s))

	for i := 0; i < len(s); {
		var (
			v   int
			err error
		)

		if s[i] == runChar {
			v, i, err = DecodeRun(s, i)
		} else {
			v, err = decodeCharAt(s[i], i)
			i++
		}
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	return values, nil
}
