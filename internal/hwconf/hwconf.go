// Package hwconf collects the variables bound to hardware addresses
// (AT %IX1.2) and writes them as a hardware configuration file.
package hwconf

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/you-not-fish/stc/internal/diag"
	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
)

// Format is the encoding of a configuration file.
type Format uint8

const (
	JSON Format = iota
	TOML
)

func (f Format) String() string {
	if f == TOML {
		return "toml"
	}
	return "json"
}

// ParseFormat accepts "json" and "toml" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "toml":
		return TOML, nil
	}
	return JSON, fmt.Errorf("unknown configuration format %q", s)
}

// FormatOf chooses the format by the extension of path: .toml is TOML,
// anything else JSON.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOML
	}
	return JSON
}

// Binding is one hardware bound instance. Variables inside arrays of
// structured types are listed once per element.
type Binding struct {
	Name      string   `json:"name" toml:"name"`
	Direction string   `json:"direction" toml:"direction"`
	Type      string   `json:"type" toml:"type"`
	Address   []string `json:"address" toml:"address"`
}

// Configuration is the content of a hardware configuration file.
type Configuration struct {
	HardwareConfiguration []Binding `json:"HardwareConfiguration" toml:"HardwareConfiguration"`
}

// Collect finds every instance with a hardware binding. All parts of an
// address must be constant integers; otherwise an E002 diagnostic is
// returned.
func Collect(idx *index.Index) (*Configuration, error) {
	conf := &Configuration{HardwareConfiguration: []Binding{}}
	for _, inst := range idx.Instances() {
		b := inst.Variable.Binding
		if b == nil {
			continue
		}
		address, err := addressOf(idx, inst.Variable, b)
		if err != nil {
			return nil, err
		}
		for _, name := range inst.Path.Expand() {
			conf.HardwareConfiguration = append(conf.HardwareConfiguration, Binding{
				Name:      name,
				Direction: b.Direction.String(),
				Type:      b.Access.String(),
				Address:   address,
			})
		}
	}
	return conf, nil
}

func addressOf(idx *index.Index, v *index.VariableEntry, b *syntax.HardwareBinding) ([]string, error) {
	scope := ""
	if i := strings.LastIndexByte(v.QualifiedName, '.'); i >= 0 {
		scope = v.QualifiedName[:i]
	}
	address := make([]string, 0, len(b.Address))
	for _, e := range b.Address {
		n, ok := idx.ConstInt(e, scope)
		if !ok {
			return nil, diag.Errorf(diag.CodeIO, syntax.SpanOf(e),
				"Cannot resolve hardware address of %s: %s is not a constant integer", v.QualifiedName, syntax.ExprString(e))
		}
		address = append(address, strconv.FormatInt(n, 10))
	}
	return address, nil
}

// Encode writes conf to w in format f.
func (conf *Configuration) Encode(w io.Writer, f Format) error {
	var (
		data []byte
		err  error
	)
	if f == TOML {
		data, err = toml.Marshal(conf)
	} else {
		data, err = json.MarshalIndent(conf, "", "  ")
	}
	if err != nil {
		return diag.New(err.Error()).WithCode(diag.CodeIO).WithErr(err)
	}
	if f == JSON {
		data = append(data, '\n')
	}
	if _, err := w.Write(data); err != nil {
		return diag.New("failed to write hardware configuration: " + err.Error()).WithCode(diag.CodeIO).WithErr(err)
	}
	return nil
}
