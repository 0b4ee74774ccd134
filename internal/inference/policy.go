package inference

// DecodingPolicy is forwarded to the model's generate call. Beam search with
// sampling disabled is deterministic for fixed weights and prompt.
type DecodingPolicy struct {
	NumBeams          int  `json:"num_beams"`
	MaxLength         int  `json:"max_length"`
	EarlyStopping     bool `json:"early_stopping"`
	NoRepeatNgramSize int  `json:"no_repeat_ngram_size"`
	DoSample          bool `json:"do_sample"`
	// The causal model echoes its prompt; keep it so callers get the whole decoded sequence
	ReturnFullText bool `json:"return_full_text"`
}

// RoadmapPolicy returns the decoding policy used for every roadmap. MaxLength
// counts prompt and continuation tokens together.
func RoadmapPolicy() DecodingPolicy {
	return DecodingPolicy{
		NumBeams:          4,
		MaxLength:         300,
		EarlyStopping:     true,
		NoRepeatNgramSize: 2,
		DoSample:          false,
		ReturnFullText:    true,
	}
}
