package report

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/gotosym/symex/engine"
)

// RecordDump is the structured, marshalable projection of an
// engine.Record: engine.Record carries raw *ir.Term pointers, which
// serialize as their internal representation would, not as the
// s-expression text a reader (or a downstream tool consuming a JSON/YAML
// trace dump) actually wants. Every field carries both a yaml and a json
// tag, so MarshalYAML (yaml.v3) and MarshalJSON (encoding/json) encode
// this one struct under the same field names.
type RecordDump struct {
	Seq        int      `yaml:"seq" json:"seq"`
	Kind       string   `yaml:"kind" json:"kind"`
	Visibility string   `yaml:"visibility" json:"visibility"`
	Guard      string   `yaml:"guard,omitempty" json:"guard,omitempty"`
	Lhs        string   `yaml:"lhs,omitempty" json:"lhs,omitempty"`
	OldLhs     string   `yaml:"old_lhs,omitempty" json:"old_lhs,omitempty"`
	Rhs        string   `yaml:"rhs,omitempty" json:"rhs,omitempty"`
	Args       []string `yaml:"args,omitempty" json:"args,omitempty"`
	Message    string   `yaml:"message,omitempty" json:"message,omitempty"`
	Function   string   `yaml:"function" json:"function"`
	LocationNo int      `yaml:"location_no" json:"location_no"`
	Stack      []string `yaml:"stack,omitempty" json:"stack,omitempty"`
}

// Dump converts a raw record slice into its marshalable projection,
// dropping hidden records unless opts.ShowHidden is set (the same
// filter WriteText applies to the text trace, so the two views of one
// run always agree on what counts as noise).
func Dump(records []engine.Record, opts Options) []RecordDump {
	out := make([]RecordDump, 0, len(records))
	for _, r := range records {
		if !opts.ShowHidden && r.Visibility == engine.Hidden {
			continue
		}
		out = append(out, dumpOne(r))
	}
	return out
}

func dumpOne(r engine.Record) RecordDump {
	d := RecordDump{
		Seq:        r.Seq,
		Kind:       r.Kind.String(),
		Function:   r.Loc.Function,
		LocationNo: r.Loc.LocationNo,
		Message:    r.Message,
		Stack:      r.StackTrace,
	}
	if r.Visibility == engine.Hidden {
		d.Visibility = "hidden"
	} else {
		d.Visibility = "visible"
	}
	if v, ok := r.Guard.BoolValue(); !ok || !v {
		d.Guard = FormatTerm(r.Guard)
	}
	if r.Lhs != nil {
		d.Lhs = FormatTerm(r.Lhs)
	}
	if r.OldLhs != nil {
		d.OldLhs = FormatTerm(r.OldLhs)
	}
	if r.Rhs != nil {
		d.Rhs = FormatTerm(r.Rhs)
	}
	if len(r.Args) > 0 {
		d.Args = make([]string, len(r.Args))
		for i, a := range r.Args {
			d.Args[i] = FormatTerm(a)
		}
	}
	return d
}

// MarshalYAML renders a run's records as a YAML document, the format
// cmd/symexec writes with -format=yaml (mirroring the program input it
// reads, §0).
func MarshalYAML(records []engine.Record, opts Options) ([]byte, error) {
	return yaml.Marshal(Dump(records, opts))
}

// MarshalJSON renders a run's records as pretty-printed JSON, the format
// cmd/symexec writes with -format=json.
func MarshalJSON(records []engine.Record, opts Options) ([]byte, error) {
	return json.MarshalIndent(Dump(records, opts), "", "  ")
}
