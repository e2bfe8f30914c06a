package model

import "fmt"

// Weight describes a downloadable model weight set with a pinned checksum.
type Weight struct {
	Size     Size
	FileName string
	URL      string
	SHA256   string
}

// The large tier maps to the large-v3 weight set; earlier large revisions
// hallucinate more on music.
var catalog = map[Size]Weight{
	Small: {
		Size:     Small,
		FileName: "ggml-small.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
		SHA256:   "1be3a9b2063867b937e64e2ec7483364a79917e157fa98c5d94b5c1fffea987b",
	},
	Medium: {
		Size:     Medium,
		FileName: "ggml-medium.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin",
		SHA256:   "6c14d5adee5f86394037b4e4e8b59f1673b6cee10e3cf0b11bbdbee79c156208",
	},
	Large: {
		Size:     Large,
		FileName: "ggml-large-v3.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin",
		SHA256:   "64d182b440b98d5203c4f9bd541544d84c605196c4f7b845dfa11fb23594d1e2",
	},
}

// LookupWeight returns the catalog entry for a size.
func LookupWeight(size Size) (Weight, error) {
	weight, ok := catalog[size]
	if !ok {
		return Weight{}, fmt.Errorf("no weight set for model size %q", size)
	}
	return weight, nil
}
