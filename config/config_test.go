package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"max7800x-hal/chip/max7800x"
	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
)

const sample = `
log: debug
profiles:
  - name: uart-fast
    source: ipo
    hz:
      pclk: 50000000
    enable: [uart0]
    keep: [iso]
  - name: slow
    source: ibro
    select: {}
`

func TestParseYAML(t *testing.T) {
	f, err := ParseYAML([]byte(sample))
	require.NoError(t, err)
	require.Len(t, f.Profiles, 2)
	l, err := f.Level()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, l)

	p, ok := f.Lookup("uart-fast")
	require.True(t, ok)
	req := p.Request()
	require.Equal(t, clock.NodeID("ipo"), req.Source)
	require.Equal(t, map[clock.NodeID]uint32{"pclk": 50_000_000}, req.Hz)
	require.Equal(t, []clock.NodeID{"uart0"}, req.Enable)
	require.Equal(t, []clock.NodeID{"iso"}, req.Keep)
	require.Nil(t, req.Disable)

	_, ok = f.Lookup("missing")
	require.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	_, err := ParseYAML([]byte("profiles: [{source: ipo}]"))
	require.Equal(t, errcode.InvalidParams, errcode.Of(err))

	_, err = ParseYAML([]byte("profiles: [{name: a}, {name: a}]"))
	require.Equal(t, errcode.Conflict, errcode.Of(err))

	_, err = ParseYAML([]byte("log: chatty\nprofiles: []"))
	require.Equal(t, errcode.InvalidParams, errcode.Of(err))

	_, err = ParseYAML([]byte("profiles: {name: [}"))
	require.Equal(t, errcode.InvalidParams, errcode.Of(err))

	_, err = ParseCBOR([]byte{0xff})
	require.Equal(t, errcode.InvalidParams, errcode.Of(err))
}

func TestCBORCarriesProfiles(t *testing.T) {
	f, err := ParseYAML([]byte(sample))
	require.NoError(t, err)
	blob, err := EncodeCBOR(f)
	require.NoError(t, err)

	back, err := ParseCBOR(blob)
	require.NoError(t, err)
	require.Equal(t, f.Log, back.Log)
	p, ok := back.Lookup("uart-fast")
	require.True(t, ok)
	require.Equal(t, uint32(50_000_000), p.Hz["pclk"])

	again, err := EncodeCBOR(back)
	require.NoError(t, err)
	require.Equal(t, blob, again, "canonical encoding is stable")
}

func TestApplySetsLevel(t *testing.T) {
	prev := logx.Level()
	t.Cleanup(func() { logx.SetLevel(prev) })
	require.NoError(t, (&File{Log: "error"}).Apply())
	require.Equal(t, slog.LevelError, logx.Level())
}

func TestDefaultProfilesCommit(t *testing.T) {
	for _, p := range DefaultProfiles().Profiles {
		t.Run(p.Name, func(t *testing.T) {
			sim := pac.NewSim()
			per := device.Steal(sim.Blocks())
			sys, err := gcr.New(per.GCR)
			require.NoError(t, err)
			tree, err := max7800x.NewTree(sys)
			require.NoError(t, err)

			require.NoError(t, tree.Apply(p.Request()))
			for node, hz := range p.Hz {
				got, ok := tree.Frequency(clock.NodeID(node))
				require.True(t, ok)
				require.Equal(t, hz, got)
			}
		})
	}
}
