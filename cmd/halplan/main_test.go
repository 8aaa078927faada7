package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTree(t *testing.T) {
	out, err := run(t, "tree")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	for _, want := range []string{"sysclk", "mux", "pclk", "uart0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("tree output lacks %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "sysclk_div") > strings.Index(out, "pclk ") {
		t.Fatalf("dividers printed out of order:\n%s", out)
	}
}

func TestPins(t *testing.T) {
	out, err := run(t, "pins", "-s", "uart0_tx")
	if err != nil {
		t.Fatalf("pins: %v", err)
	}
	if strings.TrimSpace(out) != "P0.1 AF1 uart0_tx" {
		t.Fatalf("unexpected routes %q", out)
	}
	if _, err := run(t, "pins", "-s", "spi9_mosi"); err == nil {
		t.Fatal("unknown signal should fail")
	}
}

func TestProposeDefaults(t *testing.T) {
	out, err := run(t, "propose")
	if err != nil {
		t.Fatalf("propose: %v\n%s", err, out)
	}
	if !strings.Contains(out, "fast: enable ipo; wait ipo;") || !strings.Contains(out, "select sysclk <- ipo") {
		t.Fatalf("missing fast plan:\n%s", out)
	}
	if !strings.Contains(out, "pclk       50000000 Hz") {
		t.Fatalf("missing pclk frequency:\n%s", out)
	}
}

func TestProposeInvalidProfileFails(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "p.yaml")
	body := "profiles:\n  - name: too-fast\n    source: iso\n    hz: {pclk: 60000000}\n  - name: ok\n    source: iso\n"
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "propose", "-f", file)
	if err == nil {
		t.Fatalf("expected failure:\n%s", out)
	}
	if !strings.Contains(out, "too-fast: ") || !strings.Contains(out, "clock_plan_invalid") {
		t.Fatalf("failure not reported per profile:\n%s", out)
	}

	if _, err := run(t, "propose", "-f", file, "-p", "ok"); err != nil {
		t.Fatalf("single valid profile: %v", err)
	}
	if _, err := run(t, "propose", "-f", file, "-p", "nope"); err == nil {
		t.Fatal("unknown profile should fail")
	}
}

func TestEncodeThenProposeCBOR(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "p.yaml")
	dst := filepath.Join(dir, "p.cbor")
	body := "profiles:\n  - name: console\n    source: ipo\n    hz: {pclk: 50000000}\n    enable: [uart0]\n"
	if err := os.WriteFile(src, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "encode", src, "-o", dst); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := run(t, "propose", "--chain", "-f", dst)
	if err != nil {
		t.Fatalf("propose cbor: %v\n%s", err, out)
	}
	if !strings.Contains(out, "gate-on uart0") {
		t.Fatalf("uart0 gate missing:\n%s", out)
	}
}
