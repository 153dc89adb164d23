package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/chazu/skein/bytecode"
)

// imageDump is the YAML shape written by `skein dump`.
type imageDump struct {
	Version   uint16   `yaml:"version"`
	Session   string   `yaml:"session,omitempty"`
	CodeHash  string   `yaml:"code_hash"`
	Globals   []string `yaml:"globals,omitempty"`
	Constants []string `yaml:"constants,omitempty"`
	Code      []string `yaml:"code"`
}

func newImageDump(img *bytecode.Image) imageDump {
	d := imageDump{
		Version:  img.Version,
		Session:  img.SessionID,
		CodeHash: bytecode.HashCode(img.Code).String(),
		Globals:  img.Globals,
		Code:     make([]string, len(img.Code)),
	}
	for _, c := range img.Constants {
		d.Constants = append(d.Constants, c.String())
	}
	for pos := range img.Code {
		d.Code[pos] = bytecode.DisassembleInstruction(img.Code, pos)
	}
	return d
}

// handleDump writes the image at path as YAML, for tools that would rather
// not decode CBOR.
func handleDump(w io.Writer, path string) error {
	img, err := bytecode.ReadImageFile(path)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newImageDump(img)); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return enc.Close()
}
