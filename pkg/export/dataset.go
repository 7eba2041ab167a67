package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section is a titled dataset; documents are rendered as a sequence of sections.
type Section struct {
	Title string
	Data  Dataset
}
