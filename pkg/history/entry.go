package history

// Entry is one decoded measurement: the raw input and its segment sums.
type Entry struct {
	Sequence  string `json:"sequence"`
	Processed []int  `json:"processed"`
}

func (e Entry) clone() Entry {
	processed := make([]int, len(e.Processed))
	copy(processed, e.Processed)

	return Entry{
		Sequence:  e.Sequence,
		Processed: processed,
	}
}
