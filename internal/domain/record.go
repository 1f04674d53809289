package domain

// AnalysisRecord is one persisted, immutable outcome of an image analysis.
// It is created exactly once, when consensus on the divergent analysis step
// concludes, and appended to exactly one category log. Records are never
// updated or deleted.
//
// The JSON form is the public projection returned by paginated reads.
type AnalysisRecord struct {
	// ConsensusOutput is the canonical textual result agreed on by the
	// consensus layer. It usually holds the judge's JSON verdict but is stored
	// verbatim even when it does not parse.
	ConsensusOutput string `json:"consensus_output"`

	// CallerAddress identifies the submitter. Stored verbatim, never mutated.
	CallerAddress Address `json:"caller_address"`

	// Defense is the caller's free-text justification, empty when absent.
	Defense string `json:"defense"`

	// URL is the evaluated resource reference, empty when not applicable.
	URL string `json:"url"`
}

// NewAnalysisRecord builds a record from the canonical output of a completed
// consensus round and the caller-supplied inputs.
func NewAnalysisRecord(consensusOutput string, caller Address, defense, url string) AnalysisRecord {
	return AnalysisRecord{
		ConsensusOutput: consensusOutput,
		CallerAddress:   caller,
		Defense:         defense,
		URL:             url,
	}
}

// RecordRef locates a stored record: its category log and stable index within it.
type RecordRef struct {
	Category Category `json:"category"`
	Index    int      `json:"index"`
}
