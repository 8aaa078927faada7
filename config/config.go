// Package config loads named clock profiles. Host tools read them as YAML;
// firmware embeds the same profiles as a compact CBOR blob.
package config

import (
	"fmt"
	"log/slog"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"max7800x-hal/chip/max7800x"
	"max7800x-hal/clock"
	"max7800x-hal/errcode"
	"max7800x-hal/x/logx"
)

// Profile is one clock configuration, in the terms of clock.Request.
type Profile struct {
	Name    string            `yaml:"name" cbor:"1,keyasint"`
	Source  string            `yaml:"source,omitempty" cbor:"2,keyasint,omitempty"`
	Select  map[string]string `yaml:"select,omitempty" cbor:"3,keyasint,omitempty"`
	Hz      map[string]uint32 `yaml:"hz,omitempty" cbor:"4,keyasint,omitempty"`
	Enable  []string          `yaml:"enable,omitempty" cbor:"5,keyasint,omitempty"`
	Disable []string          `yaml:"disable,omitempty" cbor:"6,keyasint,omitempty"`
	Keep    []string          `yaml:"keep,omitempty" cbor:"7,keyasint,omitempty"`
}

// File is a set of profiles plus the log level tools should run at.
type File struct {
	Log      string    `yaml:"log,omitempty" cbor:"1,keyasint,omitempty"`
	Profiles []Profile `yaml:"profiles" cbor:"2,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("config: cbor encoder: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("config: cbor decoder: %v", err))
	}
}

// ParseYAML decodes and checks a profile file.
func ParseYAML(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errcode.Wrap(errcode.InvalidParams, "config.parse_yaml", err)
	}
	return &f, f.check()
}

// ParseCBOR decodes and checks a blob made by EncodeCBOR.
func ParseCBOR(b []byte) (*File, error) {
	var f File
	if err := decMode.Unmarshal(b, &f); err != nil {
		return nil, errcode.Wrap(errcode.InvalidParams, "config.parse_cbor", err)
	}
	return &f, f.check()
}

// EncodeCBOR returns the canonical CBOR form of f.
func EncodeCBOR(f *File) ([]byte, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return encMode.Marshal(f)
}

// EncodeYAML returns f as YAML.
func EncodeYAML(f *File) ([]byte, error) { return yaml.Marshal(f) }

func (f *File) check() error {
	if _, err := f.Level(); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i, p := range f.Profiles {
		if p.Name == "" {
			return errcode.New(errcode.InvalidParams, "config.check", fmt.Sprintf("profile %d has no name", i))
		}
		if seen[p.Name] {
			return errcode.New(errcode.Conflict, "config.check", "duplicate profile "+p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Level is the parsed Log field; empty means warn.
func (f *File) Level() (slog.Level, error) {
	var l slog.Level
	if f.Log == "" {
		return slog.LevelWarn, nil
	}
	if err := l.UnmarshalText([]byte(f.Log)); err != nil {
		return l, errcode.Wrap(errcode.InvalidParams, "config.level", err)
	}
	return l, nil
}

// Apply sets the process log level from f.
func (f *File) Apply() error {
	l, err := f.Level()
	if err != nil {
		return err
	}
	logx.SetLevel(l)
	return nil
}

// Lookup returns the named profile.
func (f *File) Lookup(name string) (Profile, bool) {
	for _, p := range f.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Request converts p to a clock request. Node names are not checked here;
// clock.Tree.Propose rejects unknown ones.
func (p Profile) Request() clock.Request {
	req := clock.Request{Source: clock.NodeID(p.Source)}
	if len(p.Select) > 0 {
		req.Select = make(map[clock.NodeID]clock.NodeID, len(p.Select))
		for m, in := range p.Select {
			req.Select[clock.NodeID(m)] = clock.NodeID(in)
		}
	}
	if len(p.Hz) > 0 {
		req.Hz = make(map[clock.NodeID]uint32, len(p.Hz))
		for n, hz := range p.Hz {
			req.Hz[clock.NodeID(n)] = hz
		}
	}
	req.Enable = nodes(p.Enable)
	req.Disable = nodes(p.Disable)
	req.Keep = nodes(p.Keep)
	logx.Debug(logx.Config, "profile", "name", p.Name, "source", p.Source)
	return req
}

func nodes(ss []string) []clock.NodeID {
	if len(ss) == 0 {
		return nil
	}
	out := make([]clock.NodeID, len(ss))
	for i, s := range ss {
		out[i] = clock.NodeID(s)
	}
	return out
}

// DefaultProfiles are the configurations boards start from.
func DefaultProfiles() *File {
	return &File{Profiles: []Profile{
		{Name: "reset", Source: "iso", Hz: map[string]uint32{string(max7800x.SysclkDiv): max7800x.ISOHz}},
		{Name: "fast", Source: "ipo", Hz: map[string]uint32{string(max7800x.SysclkDiv): max7800x.IPOHz}},
		{Name: "baud", Source: "ibro", Hz: map[string]uint32{string(max7800x.SysclkDiv): max7800x.IBROHz / 4}},
		{Name: "console", Source: "ipo", Hz: map[string]uint32{string(max7800x.PCLK): max7800x.MaxPCLKHz}, Enable: []string{"uart0", "gpio0"}},
	}}
}
