package models

// Method tags how a row's label was obtained. The closed set replaces the
// ad hoc truthiness checks of looser implementations: a row either resolved
// through a concrete path or is explicitly unresolved.
type Method string

const (
	MethodSameRow      Method = "same-row"
	MethodNearestAbove Method = "nearest-above"
	MethodOverride     Method = "override"
	MethodUnresolved   Method = "unresolved"
)

// ResolvedLabel is the outcome of label resolution for one row. A non-empty
// Label is never fabricated; unresolved rows carry an empty Label and
// MethodUnresolved.
type ResolvedLabel struct {
	Row    int    `json:"row"`
	Label  string `json:"label"`
	Method Method `json:"method"`
	// Note carries a human-readable remark about how the label was
	// obtained (e.g. fallback column use), surfaced in diagnostics.
	Note string `json:"note,omitempty"`
}

// MappingRecord joins one row's anchored images with its resolved label.
// Built once per extraction run and never mutated afterwards.
type MappingRecord struct {
	Row    int    `json:"row"`
	Label  string `json:"label"`
	Method Method `json:"method"`
	// ImageOrdinals lists the identities of images anchored at Row, in
	// discovery order.
	ImageOrdinals []int `json:"image_ordinals"`
}

// ImageCount returns the number of images attached to the record.
func (r MappingRecord) ImageCount() int {
	return len(r.ImageOrdinals)
}
