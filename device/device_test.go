package device

import (
	"errors"
	"go/ast"
	"go/build/constraint"
	"go/parser"
	gotoken "go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"max7800x-hal/errcode"
	"max7800x-hal/pac"
)

func TestTakeSucceedsOnce(t *testing.T) {
	root, err := Take()
	require.NoError(t, err)
	require.NotNil(t, root)

	for i := 0; i < 3; i++ {
		_, err := Take()
		require.True(t, errors.Is(err, errcode.AlreadyTaken), "call %d: %v", i, err)
	}

	p, err := root.Split()
	require.NoError(t, err)
	require.Len(t, p.All(), NumIDs)

	_, err = root.Split()
	require.Equal(t, errcode.AlreadyTaken, errcode.Of(err))
}

func TestTokensAreUniqueAndExhaustive(t *testing.T) {
	p := Steal(pac.NewSim().Blocks())
	ids := p.All()
	require.Len(t, ids, NumIDs)

	seen := map[ID]bool{}
	blocks := map[pac.Block]ID{}
	for _, id := range ids {
		require.False(t, seen[id], "duplicate token %s", id)
		seen[id] = true
	}
	for i := 0; i < NumIDs; i++ {
		require.True(t, seen[ID(i)], "missing token %s", ID(i))
	}

	var leases []*Lease
	p.each(func(id ID, tok *token) {
		l, err := tok.Claim()
		require.NoError(t, err)
		require.Equal(t, id, l.ID())
		require.NotNil(t, l.Block(), "%s has no block", id)
		leases = append(leases, l)
	})
	for _, l := range leases {
		prev, dup := blocks[l.Block()]
		require.False(t, dup, "%s aliases %s", l.ID(), prev)
		blocks[l.Block()] = l.ID()
	}
}

func TestClaimConsumesToken(t *testing.T) {
	p := Steal(pac.NewSim().Blocks())
	l, err := p.UART[1].Claim()
	require.NoError(t, err)
	require.Equal(t, UART1, l.ID())

	_, err = p.UART[1].Claim()
	require.Equal(t, errcode.AlreadyTaken, errcode.Of(err))

	l.End()
	require.Panics(t, func() { l.Block() })

	l2, err := p.UART[1].Claim()
	require.NoError(t, err)
	l2.End()
}

func TestIDNames(t *testing.T) {
	require.Equal(t, "uart0", UART0.String())
	require.Equal(t, ClassTMR, TMR3.Class())
	require.Equal(t, 3, TMR3.Index())
	require.Equal(t, int16(pac.IRQ_I2C2), I2C2.IRQ())
	require.Equal(t, int16(-1), SIMO0.IRQ())

	id, ok := Lookup("i2c1")
	require.True(t, ok)
	require.Equal(t, I2C1, id)
	id, ok = Lookup("spi0")
	require.True(t, ok)
	require.Equal(t, SPI0, id)
	_, ok = Lookup("usb")
	require.False(t, ok)
	require.Equal(t, ClassTMR, TMR5.Class())
	require.Equal(t, 5, TMR5.Index())
	require.Equal(t, int16(pac.IRQ_UART3), UART3.IRQ())
	require.Equal(t, "owm", OWM0.String())
}

func TestStealOnlyInHostBuilds(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)
	declared := 0
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(gotoken.NewFileSet(), name, nil, parser.ParseComments)
		require.NoError(t, err)
		var expr constraint.Expr
		for _, c := range f.Comments {
			if c.Pos() >= f.Package {
				break
			}
			for _, l := range c.List {
				if constraint.IsGoBuild(l.Text) {
					expr, err = constraint.Parse(l.Text)
					require.NoError(t, err)
				}
			}
		}
		for _, d := range f.Decls {
			fn, ok := d.(*ast.FuncDecl)
			if !ok || fn.Recv != nil || fn.Name.Name != "Steal" {
				continue
			}
			declared++
			require.NotNil(t, expr, "%s declares Steal without a build constraint", name)
			require.False(t, expr.Eval(func(tag string) bool { return tag == "tinygo" }),
				"%s declares Steal in firmware builds", name)
		}
	}
	require.Equal(t, 1, declared)
}
