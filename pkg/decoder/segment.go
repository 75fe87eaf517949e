package decoder

// Parse groups a value list into count-prefixed segments and returns the sum
// of each segment. The first unconsumed value is the segment's count and the
// next count values are summed. A segment that runs past the end of the list
// sums whatever values remain; a count of zero produces a sum of zero.
func Parse(values []int) []int {
	result := make([]int, 0, len(values))

	for i := 0; i < len(values); {
		count := values[i]
		i++

		sum := 0
		for n := 0; n < count && i < len(values); n++ {
			sum += values[i]
			i++
		}

		result = append(result, sum)
	}

	return result
}

// Decode converts a measurement string into its segment sums. Callers that
// accept untrusted input should run Validate first; Decode still rejects
// invalid characters with a *DecodeError.
func Decode(s string) ([]int, error) {
	values, err := ToValueList(s)
	if err != nil {
		return nil, err
	}

	return Parse(values), nil
}
