package index

// Posting records how often one document contains a term.
type Posting struct {
	DocID     string
	Frequency int
}

// docInfo is the per-document bookkeeping used for ordering search hits.
type docInfo struct {
	seq    int
	length int
	terms  []string
}

// hit is a candidate document accumulated during a search.
type hit struct {
	docID   string
	seq     int
	matched int
	density float64
}
