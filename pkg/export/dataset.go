package export

// Dataset defines tabular export content. Row values are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}
