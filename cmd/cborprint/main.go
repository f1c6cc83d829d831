// Command cborprint reads a CBOR item from a file (or stdin) and prints
// it in a diagnostic-notation dialect, optionally indented. Grounded on
// the original implementation's pretty-printer example: a first pass
// validates the whole input with Skip, and only then does a fresh pass
// walk it for printing, so a malformed tail never produces partial
// output.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thebagchi/nanocbor-go/cbor"
)

// readBufferBytes bounds how much of the input this CLI will buffer.
// The core decoder is allocation-free; this command is not, but it
// still avoids growing without limit for a pathological input.
const readBufferBytes = 4096

// maxDepth caps the printer's own recursion, independent of
// cbor.RecursionMax: a pretty-printer walking attacker-controlled input
// needs its own bound regardless of what the decoder enforces.
const maxDepth = 20

func main() {
	var (
		file   = flag.String("file", "-", "CBOR file to print (- for stdin)")
		pretty = flag.Bool("pretty", false, "indent nested arrays and maps")
	)
	flag.Parse()

	buf, err := readInput(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cborprint:", err)
		os.Exit(1)
	}

	for v := cbor.NewDecoder(buf); !v.AtEnd(); {
		if err := v.Skip(); err != nil {
			fmt.Fprintln(os.Stderr, "cborprint: malformed input:", err)
			os.Exit(1)
		}
	}

	var out strings.Builder
	p := printer{pretty: *pretty}
	if err := p.printItem(&out, cbor.NewDecoder(buf), 0); err != nil {
		fmt.Fprintln(os.Stderr, "cborprint:", err)
		os.Exit(1)
	}
	fmt.Println(out.String())
}

func readInput(path string) ([]byte, error) {
	var r io.Reader
	if path == "-" || path == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	buf := make([]byte, 0, readBufferBytes+1)
	for {
		if len(buf) == cap(buf) {
			return nil, fmt.Errorf("input exceeds %d bytes", readBufferBytes)
		}
		n, err := r.Read(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]
		if err != nil {
			if err == io.EOF {
				return buf, nil
			}
			return nil, err
		}
	}
}

type printer struct {
	pretty bool
}

func (p *printer) indent(out *strings.Builder, depth int) {
	if !p.pretty {
		return
	}
	out.WriteByte('\n')
	for i := 0; i < depth; i++ {
		out.WriteString("  ")
	}
}

// printItem prints exactly one CBOR item at d's cursor, advancing past
// it; a tag is printed together with the item it encloses. The decoders
// this command creates are not packed-enabled, so simple(0..15) and
// tag(6) items print as themselves.
func (p *printer) printItem(out *strings.Builder, d *cbor.Decoder, depth int) error {
	if depth > maxDepth {
		return cbor.ErrRecursion
	}
	mt, err := d.GetType()
	if err != nil {
		return err
	}
	switch mt {
	case cbor.TypeUint:
		v, _, err := d.GetUint64()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d", v)
	case cbor.TypeNint:
		v, _, err := d.GetInt64()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d", v)
	case cbor.TypeBstr:
		b, err := d.GetByteString()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "h'%s'", hex.EncodeToString(b))
	case cbor.TypeTstr:
		s, err := d.GetTextString()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%q", s)
	case cbor.TypeArray:
		return p.printArray(out, d, depth)
	case cbor.TypeMap:
		return p.printMap(out, d, depth)
	case cbor.TypeTag:
		tag, err := d.GetTag64()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d(", tag)
		if err := p.printItem(out, d, depth); err != nil {
			return err
		}
		out.WriteByte(')')
	case cbor.TypeFloat:
		return p.printFloatMajor(out, d)
	default:
		return cbor.ErrInvalidType
	}
	return nil
}

func (p *printer) printArray(out *strings.Builder, d *cbor.Decoder, depth int) error {
	var child cbor.Decoder
	if err := d.EnterArray(&child); err != nil {
		return err
	}
	out.WriteByte('[')
	first := true
	for !child.AtEnd() {
		if !first {
			out.WriteByte(',')
		}
		first = false
		p.indent(out, depth+1)
		if err := p.printItem(out, &child, depth+1); err != nil {
			return err
		}
	}
	if !first {
		p.indent(out, depth)
	}
	out.WriteByte(']')
	return d.Leave(&child)
}

func (p *printer) printMap(out *strings.Builder, d *cbor.Decoder, depth int) error {
	var child cbor.Decoder
	if err := d.EnterMap(&child); err != nil {
		return err
	}
	out.WriteByte('{')
	first := true
	for !child.AtEnd() {
		if !first {
			out.WriteByte(',')
		}
		first = false
		p.indent(out, depth+1)
		if err := p.printItem(out, &child, depth+1); err != nil {
			return err
		}
		out.WriteString(": ")
		if err := p.printItem(out, &child, depth+1); err != nil {
			return err
		}
	}
	if !first {
		p.indent(out, depth)
	}
	out.WriteByte('}')
	return d.Leave(&child)
}

// printFloatMajor prints a bool, null, undefined, simple value, or
// float. It re-derives the kind from GetSimple/GetBool/etc. against a
// throwaway cursor copy so a failed attempt doesn't desynchronize d.
func (p *printer) printFloatMajor(out *strings.Builder, d *cbor.Decoder) error {
	if probe := d.Fork(); probe.GetNull() == nil {
		*d = *probe
		out.WriteString("null")
		return nil
	}
	if probe := d.Fork(); probe.GetUndefined() == nil {
		*d = *probe
		out.WriteString(`"undefined"`)
		return nil
	}
	probe := d.Fork()
	if v, err := probe.GetBool(); err == nil {
		*d = *probe
		fmt.Fprintf(out, "%t", v)
		return nil
	}
	probe = d.Fork()
	if v, err := probe.GetDouble(); err == nil {
		*d = *probe
		fmt.Fprintf(out, "%f", v)
		return nil
	}
	v, err := d.GetSimple()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "simple(%d)", v)
	return nil
}
