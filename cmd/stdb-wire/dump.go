package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clockworklabs/spacetimedb-go/pkg/bsatn"
)

func dumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [hex]",
		Short: "Pretty-print a raw BSATN value",
		Long: `Decode one BSATN value schema-blind and print its structure.

Examples:
  stdb-wire dump '03 2A'
  stdb-wire dump '14 02000000 08 0A000000 08 14000000'
  cat value.hex | stdb-wire dump`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hexInput(args)
			if err != nil {
				return err
			}
			r := bsatn.NewReader(data)
			if err := printValue(cmd.OutOrStdout(), r, 0); err != nil {
				return fmt.Errorf("at offset %d: %w", r.Position(), err)
			}
			if r.Remaining() > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "-- %d trailing bytes --\n", r.Remaining())
			}
			return nil
		},
	}
	return cmd
}

// hexInput reads hex from the argument or stdin, stripping whitespace.
func hexInput(args []string) ([]byte, error) {
	var raw string
	if len(args) == 1 {
		raw = args[0]
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		raw = string(b)
	}
	raw = strings.Join(strings.Fields(raw), "")
	data, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no input")
	}
	return data, nil
}

// printValue decodes one value schema-blind, printing one line per node.
// Depth is bounded like Reader.SkipValue so hostile nesting cannot blow
// the stack.
func printValue(w io.Writer, r *bsatn.Reader, depth int) error {
	if depth > bsatn.MaxNestingDepth {
		return bsatn.ErrTooDeep
	}
	indent := strings.Repeat("  ", depth)
	tag, err := r.ReadTag()
	if err != nil {
		return err
	}
	switch tag {
	case bsatn.TagBoolFalse:
		fmt.Fprintf(w, "%sbool false\n", indent)
	case bsatn.TagBoolTrue:
		fmt.Fprintf(w, "%sbool true\n", indent)
	case bsatn.TagU8:
		v, err := r.ReadU8()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%su8 %d\n", indent, v)
	case bsatn.TagI8:
		v, err := r.ReadI8()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%si8 %d\n", indent, v)
	case bsatn.TagU16:
		v, err := r.ReadU16()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%su16 %d\n", indent, v)
	case bsatn.TagI16:
		v, err := r.ReadI16()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%si16 %d\n", indent, v)
	case bsatn.TagU32:
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%su32 %d\n", indent, v)
	case bsatn.TagI32:
		v, err := r.ReadI32()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%si32 %d\n", indent, v)
	case bsatn.TagU64:
		v, err := r.ReadU64()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%su64 %d\n", indent, v)
	case bsatn.TagI64:
		v, err := r.ReadI64()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%si64 %d\n", indent, v)
	case bsatn.TagF32:
		v, err := r.ReadF32()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%sf32 %g\n", indent, v)
	case bsatn.TagF64:
		v, err := r.ReadF64()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%sf64 %g\n", indent, v)
	case bsatn.TagString:
		v, err := r.ReadString()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%sstring %q\n", indent, v)
	case bsatn.TagBytes:
		v, err := r.ReadBytes()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%sbytes[%d] % X\n", indent, len(v), v)
	case bsatn.TagU128, bsatn.TagI128:
		v, err := r.ReadU128()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s%s % X\n", indent, strings.ToLower(tag.String()), v[:])
	case bsatn.TagU256, bsatn.TagI256:
		v, err := r.ReadU256()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s%s % X\n", indent, strings.ToLower(tag.String()), v[:])
	case bsatn.TagList, bsatn.TagArray:
		n, err := r.ReadArrayHeader()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%sarray[%d]\n", indent, n)
		for i := 0; i < n; i++ {
			if err := printValue(w, r, depth+1); err != nil {
				return err
			}
		}
	case bsatn.TagStruct:
		n, err := r.ReadStructHeader()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%sstruct{%d}\n", indent, n)
		for i := 0; i < n; i++ {
			name, err := r.ReadFieldName()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s  .%s:\n", indent, name)
			if err := printValue(w, r, depth+2); err != nil {
				return err
			}
		}
	case bsatn.TagEnum:
		variant, err := r.ReadEnumHeader()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%senum variant=%d\n", indent, variant)
		if err := printValue(w, r, depth+1); err != nil {
			return err
		}
	case bsatn.TagOptionNone:
		fmt.Fprintf(w, "%snone\n", indent)
	case bsatn.TagOptionSome:
		fmt.Fprintf(w, "%ssome\n", indent)
		if err := printValue(w, r, depth+1); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: 0x%02X", bsatn.ErrInvalidTag, byte(tag))
	}
	return nil
}
