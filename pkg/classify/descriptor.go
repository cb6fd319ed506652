package classify

// Descriptor is the result of classifying one raw identifier.
type Descriptor struct {
	// Identifier is the raw identifier the descriptor was derived from.
	Identifier string

	// Name is the Prometheus metric name. Empty when not reportable.
	Name string

	// LabelNames and LabelValues align positionally.
	LabelNames  []string
	LabelValues []string

	// Reportable is false for suppressed identifiers. A non-reportable
	// descriptor must never be turned into samples.
	Reportable bool
}

// LabelsWith returns copies of the label names and values with one extra
// pair appended. The descriptor itself is not modified.
func (d Descriptor) LabelsWith(name, value string) ([]string, []string) {
	names := make([]string, 0, len(d.LabelNames)+1)
	names = append(names, d.LabelNames...)
	names = append(names, name)

	values := make([]string, 0, len(d.LabelValues)+1)
	values = append(values, d.LabelValues...)
	values = append(values, value)

	return names, values
}

// reportable builds a reportable descriptor from alternating label
// name/value pairs.
func reportable(name string, labels ...string) Descriptor {
	d := Descriptor{
		Name:       name,
		Reportable: true,
	}
	for i := 0; i+1 < len(labels); i += 2 {
		d.LabelNames = append(d.LabelNames, labels[i])
		d.LabelValues = append(d.LabelValues, labels[i+1])
	}
	return d
}

// suppressed is returned for identifiers dropped on purpose.
var suppressed = Descriptor{}
