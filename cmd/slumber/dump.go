package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/mgomes/slumber/slumber"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("slumber: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// dumpModule writes the exported bindings of a finished module in the
// requested format.
func dumpModule(w io.Writer, format string, module *slumber.Object) error {
	bindings, err := slumber.ModuleBindings(module)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	switch format {
	case "yaml":
		return dumpYAML(w, bindings)
	case "cbor":
		data, err := cborEncMode.Marshal(bindings)
		if err != nil {
			return fmt.Errorf("dump: marshal cbor: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("dump: unknown format %q (want yaml or cbor)", format)
	}
}

func dumpYAML(w io.Writer, bindings map[string]any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(bindings); err != nil {
		return fmt.Errorf("dump: marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("dump: encoder close: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func validDumpFormat(format string) bool {
	return format == "" || format == "yaml" || format == "cbor"
}
