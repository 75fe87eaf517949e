package decoder

// Validate checks that s only contains characters from [a-z_]. The empty
// string is valid and decodes to an empty list. Anything Validate accepts,
// Decode accepts.
func Validate(s string) error {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != zero && (c < 'a' || c > 'z') {
			return &ValidationError{Input: s, Reason: "only lowercase letters and '_' are allowed"}
		}
	}

	return nil
}
