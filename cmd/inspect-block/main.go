// Command inspect-block executes a small layout/navigation manifest
// against the evaluator memory model and prints the resulting block and
// pointer state. Intended for debugging layout and lifetime issues.
//
// Manifest example:
//
//	types:
//	  - name: Point
//	    record:
//	      fields:
//	        - {name: x, type: int32}
//	        - {name: y, type: int32}
//	  - name: coords
//	    array: {elem: int32, len: 4}
//	script:
//	  - alloc: coords
//	  - index: 2
//	  - init: true
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	goyaml "github.com/itchyny/go-yaml"
	"github.com/mattn/go-isatty"
	yaml "gopkg.in/yaml.v3"

	"github.com/andrea010901/interp"
	"github.com/andrea010901/interp/pkg/memdump"
)

type manifest struct {
	Types  []typeDecl `yaml:"types"`
	Script []step     `yaml:"script"`
}

type typeDecl struct {
	Name   string      `yaml:"name"`
	Prim   string      `yaml:"prim,omitempty"`
	Array  *arrayDecl  `yaml:"array,omitempty"`
	Record *recordDecl `yaml:"record,omitempty"`
	Const  bool        `yaml:"const,omitempty"`
	Dummy  bool        `yaml:"dummy,omitempty"`
}

type arrayDecl struct {
	Elem string `yaml:"elem"`
	Len  uint32 `yaml:"len"`
}

type recordDecl struct {
	Union  bool        `yaml:"union"`
	Fields []fieldDecl `yaml:"fields"`
}

type fieldDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type step struct {
	Alloc      string  `yaml:"alloc,omitempty"`
	Field      string  `yaml:"field,omitempty"`
	Index      *uint32 `yaml:"index,omitempty"`
	Narrow     bool    `yaml:"narrow,omitempty"`
	Expand     bool    `yaml:"expand,omitempty"`
	Base       bool    `yaml:"base,omitempty"`
	Init       bool    `yaml:"init,omitempty"`
	Activate   bool    `yaml:"activate,omitempty"`
	Deactivate bool    `yaml:"deactivate,omitempty"`
	StoreInt   *int64  `yaml:"store,omitempty"`
	PopScope   bool    `yaml:"pop-scope,omitempty"`
}

func main() {
	var (
		file     = flag.String("f", "-", "manifest file (- for stdin)")
		output   = flag.String("o", "text", "output format: text or yaml")
		colorStr = flag.String("color", "auto", "colorize output: auto, always or never")
		logLevel = flag.String("log", "warn", "log level: error, warn, info or debug")
	)
	flag.Parse()

	if err := run(*file, *output, *colorStr, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "inspect-block: %v\n", err)
		os.Exit(1)
	}
}

func run(file, output, colorStr, logLevel string) error {
	var in []byte
	var err error
	if file == "-" {
		in, err = io.ReadAll(os.Stdin)
	} else {
		in, err = os.ReadFile(file)
	}
	if err != nil {
		return err
	}

	var m manifest
	if err := yaml.Unmarshal(in, &m); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	opts := interp.DefaultEvalOptions()
	opts.LogLevel = logLevel
	ctx := interp.NewEvalContext(opts)
	if err := registerTypes(ctx, m.Types); err != nil {
		return err
	}

	block, ptr, err := runScript(ctx, m.Script)
	if err != nil {
		return err
	}
	if block == nil {
		return fmt.Errorf("script allocated no block")
	}

	switch output {
	case "text":
		dumpOpts := memdump.Options{Color: useColor(colorStr)}
		fmt.Print(memdump.Block(block, dumpOpts))
		if ptr != nil {
			fmt.Print(memdump.Pointer(ptr, dumpOpts))
		}
		return nil
	case "yaml":
		return dumpYAML(os.Stdout, block, ptr)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func useColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

// registerTypes interns all declared layouts. Records may refer to
// previously declared type names.
func registerTypes(ctx *interp.EvalContext, decls []typeDecl) error {
	prog := ctx.Program()
	for _, d := range decls {
		decl := interp.NewDecl(d.Name, interp.SourceLoc{File: "manifest", Line: 0})
		var opts []interp.DescOpts
		if d.Const {
			opts = append(opts, interp.DescOpts{IsConst: true})
		}

		var desc *interp.Descriptor
		switch {
		case d.Dummy:
			desc = interp.NewDummyDescriptor(decl)
		case d.Prim != "":
			t, ok := interp.ParsePrimType(d.Prim)
			if !ok {
				return fmt.Errorf("type %q: unknown primitive %q", d.Name, d.Prim)
			}
			desc = interp.NewPrimitiveDescriptor(decl, t, opts...)
		case d.Array != nil:
			if t, ok := interp.ParsePrimType(d.Array.Elem); ok {
				desc = interp.NewPrimitiveArrayDescriptor(decl, t, d.Array.Len, opts...)
			} else if elem, ok := prog.LookupDescriptor(d.Array.Elem); ok {
				desc = interp.NewCompositeArrayDescriptor(decl, elem, d.Array.Len, opts...)
			} else {
				return fmt.Errorf("type %q: unknown element type %q", d.Name, d.Array.Elem)
			}
		case d.Record != nil:
			rec := interp.NewRecord(decl, d.Record.Union)
			for _, f := range d.Record.Fields {
				fdecl := interp.NewDecl(f.Name, interp.SourceLoc{File: "manifest"})
				if t, ok := interp.ParsePrimType(f.Type); ok {
					rec.AddField(f.Name, interp.NewPrimitiveDescriptor(fdecl, t))
				} else if fd, ok := prog.LookupDescriptor(f.Type); ok {
					rec.AddField(f.Name, fd)
				} else {
					return fmt.Errorf("type %q: field %q has unknown type %q", d.Name, f.Name, f.Type)
				}
			}
			if err := prog.RegisterRecord(rec); err != nil {
				return err
			}
			desc = interp.NewRecordDescriptor(decl, rec, opts...)
		default:
			return fmt.Errorf("type %q declares no layout", d.Name)
		}

		prog.GetOrCreateDescriptor(d.Name, func() *interp.Descriptor { return desc })
	}
	return nil
}

func runScript(ctx *interp.EvalContext, script []step) (*interp.Block, *interp.Pointer, error) {
	ctx.PushScope()

	var block *interp.Block
	var ptr *interp.Pointer
	for i, s := range script {
		needsPtr := s.Field != "" || s.Index != nil || s.Narrow || s.Expand ||
			s.Base || s.Init || s.Activate || s.Deactivate || s.StoreInt != nil
		if needsPtr && ptr == nil {
			return nil, nil, fmt.Errorf("step %d: no pointer to navigate", i)
		}
		switch {
		case s.Alloc != "":
			desc, ok := ctx.Program().LookupDescriptor(s.Alloc)
			if !ok {
				return nil, nil, fmt.Errorf("step %d: unknown type %q", i, s.Alloc)
			}
			block = ctx.AllocLocal(desc)
			ptr = interp.NewPointer(block)

		case s.Field != "":
			rec := ptr.GetRecord()
			if rec == nil {
				return nil, nil, fmt.Errorf("step %d: %q is not a record", i, ptr.GetFieldDesc())
			}
			f, ok := rec.FieldByName(s.Field)
			if !ok {
				return nil, nil, fmt.Errorf("step %d: no field %q in %s", i, s.Field, rec.Name())
			}
			ptr = ptr.AtField(f.Offset)

		case s.Index != nil:
			ptr = ptr.AtIndex(*s.Index)

		case s.Narrow:
			ptr = ptr.Narrow()
		case s.Expand:
			ptr = ptr.Expand()
		case s.Base:
			ptr = ptr.GetBase()
		case s.Init:
			ptr.Initialize()
		case s.Activate:
			ptr.Activate()
		case s.Deactivate:
			ptr.Deactivate()
		case s.StoreInt != nil:
			ptr.Store(interp.NewIntValue(*s.StoreInt))
			ptr.Initialize()
		case s.PopScope:
			ctx.PopScope()
		default:
			return nil, nil, fmt.Errorf("step %d: empty step", i)
		}
	}
	return block, ptr, nil
}

// YAML dump structures for -o yaml.
type blockDump struct {
	Block      uint32    `yaml:"block"`
	Type       string    `yaml:"type"`
	Dead       bool      `yaml:"dead"`
	Pointers   int       `yaml:"pointers"`
	Subobjects []subDump `yaml:"subobjects"`
}

type subDump struct {
	Offset uint32 `yaml:"offset"`
	Kind   string `yaml:"kind"`
	Name   string `yaml:"name,omitempty"`
	Index  *int   `yaml:"index,omitempty"`
	Type   string `yaml:"type,omitempty"`
	Init   bool   `yaml:"init"`
	Active bool   `yaml:"active"`
}

type ptrDump struct {
	Encoding   string `yaml:"encoding"`
	Names      string `yaml:"names"`
	ByteOffset uint32 `yaml:"byteOffset"`
	OnePastEnd bool   `yaml:"onePastEnd"`
	Live       bool   `yaml:"live"`
}

func dumpYAML(w io.Writer, b *interp.Block, p *interp.Pointer) error {
	out := struct {
		Block   blockDump `yaml:"block"`
		Pointer *ptrDump  `yaml:"pointer,omitempty"`
	}{
		Block: blockDump{
			Block:    b.ID(),
			Type:     b.Desc().String(),
			Dead:     b.IsDead(),
			Pointers: b.NumPointers(),
		},
	}
	for _, s := range b.Subobjects() {
		sd := subDump{
			Offset: s.Base,
			Kind:   s.Kind.String(),
			Name:   s.Name,
			Init:   s.Initialized,
			Active: s.Active,
		}
		if s.Index >= 0 {
			idx := s.Index
			sd.Index = &idx
		}
		if s.IsPrim {
			sd.Type = s.Prim.String()
		} else if s.Desc != nil {
			sd.Type = s.Desc.String()
		}
		out.Block.Subobjects = append(out.Block.Subobjects, sd)
	}
	if p != nil {
		out.Pointer = &ptrDump{
			Encoding:   p.String(),
			Names:      p.DiagnosticString(nil),
			ByteOffset: p.GetByteOffset(),
			Live:       p.IsLive(),
		}
		if !p.IsElementPastEnd() {
			out.Pointer.OnePastEnd = p.IsOnePastEnd()
		} else {
			out.Pointer.OnePastEnd = true
		}
	}

	data, err := goyaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode dump: %w", err)
	}
	_, err = w.Write(data)
	return err
}
