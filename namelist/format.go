package namelist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Format writes f in namelist syntax to the writer.
func (f *File) Format(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := f.WriteTo(w)

	return err
}

// FormatJSON writes f as JSON to the writer.
func (f *File) FormatJSON(ctx context.Context, w io.Writer, indent int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(f, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(f)
	}

	if err != nil {
		return ErrIO.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes f as YAML to the writer. An indent of zero selects flow
// style.
func (f *File) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, f.ToNative(), opts...)
	if err != nil {
		return ErrIO.Wrap(err)
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatHCL writes f as HCL with one namelist block per namelist:
//
//	namelist "name" {
//	  key = value
//	}
//
// Keys that are not valid HCL identifiers have each offending character
// replaced by '_'.
func (f *File) FormatHCL(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := hclwrite.NewEmptyFile()
	body := out.Body()

	for i, n := range f.namelists {
		if i > 0 {
			body.AppendNewline()
		}

		block := body.AppendNewBlock("namelist", []string{n.name})

		for _, e := range n.entries {
			if e.IsAssignment() {
				block.Body().SetAttributeValue(identifier(e.key), ctyValue(e.value))
			}
		}
	}

	_, err := out.WriteTo(w)

	return err
}

// ctyValue converts v to its HCL representation.
func ctyValue(v *Value) cty.Value {
	switch v.Kind {
	case KindLogical:
		return cty.BoolVal(v.Bool)

	case KindString:
		return cty.StringVal(unquote(v.Text))

	case KindInteger:
		return cty.NumberIntVal(v.Int)

	case KindReal:
		return ctyFloat(v.Float)

	case KindComplex:
		return cty.TupleVal([]cty.Value{
			ctyFloat(real(v.Cmplx)),
			ctyFloat(imag(v.Cmplx)),
		})

	case KindArray, KindMixed:
		if len(v.Elements) == 0 {
			return cty.EmptyTupleVal
		}

		elems := make([]cty.Value, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = ctyValue(e)
		}

		return cty.TupleVal(elems)

	default:
		return cty.StringVal(v.Text)
	}
}

func ctyFloat(f float64) cty.Value {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return cty.StringVal(formatReal(f))
	}

	return cty.NumberFloatVal(f)
}

// identifier maps a namelist key to a valid HCL identifier.
func identifier(key string) string {
	if hclsyntax.ValidIdentifier(key) {
		return key
	}

	b := []byte(key)
	for i, c := range b {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c == '_':
		case c >= '0' && c <= '9', c == '-':
			if i == 0 {
				b[i] = '_'
			}
		default:
			b[i] = '_'
		}
	}

	if s := strings.TrimRight(string(b), "_"); s != "" {
		return s
	}

	return "_"
}
