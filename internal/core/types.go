package core

// Document is the raw text of one ingested source file. It exists only during
// ingestion; once chunked it is discarded.
type Document struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Chunk is a bounded substring of a Document, sized for embedding and
// retrieval. Start and End are rune offsets into the source document text.
type Chunk struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Text   string `json:"text"`
}

// SearchResult pairs a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// Answer is a grounded answer: the generated text plus the chunks it was
// conditioned on, for traceability.
type Answer struct {
	Text    string  `json:"text"`
	Sources []Chunk `json:"sources"`
}

// Reply is a single message returned by the dialogue engine. Engines may
// attach more fields (images, buttons); only the text is used here.
type Reply struct {
	Text string `json:"text"`
}

// Alternative is one ranked transcript hypothesis from the speech backend.
type Alternative struct {
	Transcript   string `json:"transcript"`
	LanguageCode string `json:"language_code"`
}
