package pipeline

// Note records one warning or error for the final summary. Asset carries
// the manifest key when the note concerns a specific asset; run-level notes
// leave it empty.
type Note struct {
	Asset string
	Cause string
}

func (n Note) String() string {
	if n.Asset == "" {
		return n.Cause
	}
	return n.Asset + ": " + n.Cause
}

// Stats accumulates run-wide conversion statistics. It is mutated by
// exactly one goroutine, so no locking is needed.
type Stats struct {
	Total     int
	Converted int
	Skipped   int
	Failed    int

	DDSBytes  int64
	PNGBytes  int64
	AVIFBytes int64

	Warnings []Note
	Errors   []Note
}

func (s *Stats) AddWarning(asset, cause string) {
	s.Warnings = append(s.Warnings, Note{Asset: asset, Cause: cause})
}

func (s *Stats) AddError(asset, cause string) {
	s.Errors = append(s.Errors, Note{Asset: asset, Cause: cause})
}

// SavingsPercent returns the overall size reduction from DDS to AVIF.
// It reports false until both byte totals are populated.
func (s *Stats) SavingsPercent() (float64, bool) {
	if s.DDSBytes <= 0 || s.AVIFBytes <= 0 {
		return 0, false
	}
	return (1 - float64(s.AVIFBytes)/float64(s.DDSBytes)) * 100, true
}
