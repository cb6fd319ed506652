package family

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// ContentType is the media type of the text exposition format.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

var (
	helpEscaper  = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	labelEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)
)

// WriteText renders families in the Prometheus text exposition format:
//
//	# HELP <name> <help>
//	# TYPE <name> <type>
//	<sample name>{<label>="<value>",...} <value>
//
// A family without samples is written as its HELP and TYPE lines only.
func WriteText(w io.Writer, families []*Family) error {
	bw := bufio.NewWriter(w)
	for _, f := range families {
		writeFamily(bw, f)
	}
	return bw.Flush()
}

func writeFamily(w *bufio.Writer, f *Family) {
	w.WriteString("# HELP ")
	w.WriteString(f.Name)
	w.WriteByte(' ')
	w.WriteString(helpEscaper.Replace(f.Help))
	w.WriteByte('\n')

	w.WriteString("# TYPE ")
	w.WriteString(f.Name)
	w.WriteByte(' ')
	w.WriteString(f.Type.String())
	w.WriteByte('\n')

	for _, s := range f.Samples {
		writeSample(w, s)
	}
}

func writeSample(w *bufio.Writer, s Sample) {
	w.WriteString(s.Name)
	if len(s.LabelNames) > 0 {
		w.WriteByte('{')
		for i, name := range s.LabelNames {
			if i > 0 {
				w.WriteByte(',')
			}
			w.WriteString(name)
			w.WriteString(`="`)
			if i < len(s.LabelValues) {
				w.WriteString(labelEscaper.Replace(s.LabelValues[i]))
			}
			w.WriteByte('"')
		}
		w.WriteByte('}')
	}
	w.WriteByte(' ')
	w.WriteString(formatFloat(s.Value))
	w.WriteByte('\n')
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, +1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	case math.IsNaN(f):
		return "NaN"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
