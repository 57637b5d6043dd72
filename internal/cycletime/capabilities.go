package cycletime

// Capabilities records which row annotations a run produced. It is decided
// once per Analyzer and every consumer of the annotations branches on it.
type Capabilities struct {
	FaultMarkers     bool // fault annotation ran (fault code set not empty)
	SubgroupValidity bool // incomplete strip subgroups were marked
	OutlierFlags     bool // per-frame outlier detection ran
}

// AllCapabilities enables every annotation.
func AllCapabilities() Capabilities {
	return Capabilities{FaultMarkers: true, SubgroupValidity: true, OutlierFlags: true}
}

// Excluded reports whether r must be left out of averages, which is also what
// the detail sheet shows as "MC ERROR".
func (c Capabilities) Excluded(r Row) bool {
	return (c.SubgroupValidity && r.OutlierSubgroup) ||
		(c.OutlierFlags && r.Outlier) ||
		(c.FaultMarkers && r.Fault)
}

// ErrorLabel renders the detail sheet's Error column.
func (c Capabilities) ErrorLabel(r Row) string {
	if r.Blank || !c.Excluded(r) {
		return ""
	}
	return "MC ERROR"
}
