package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const crateObj = `mtllib crate.mtl
o Crate
v 0 0 0
v 2 0 0
v 2 2 0
vt 0 0
vt 1 0
vt 1 1
vn 0 0 1
usemtl Planks
f 1/1/1 2/2/1 3/3/1
`

const crateMtl = `newmtl Planks
map_Kd planks.png
map_Bump planks_n.png
`

func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{"crate.obj": crateObj, "crate.mtl": crateMtl} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"planks.png", "planks_n.png"} {
		img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
		img.Set(0, 0, color.NRGBA{B: 255, A: 255})
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
	return dir
}

func TestRunPrintsSummary(t *testing.T) {
	dir := writeAssets(t)
	var out bytes.Buffer
	if err := run([]string{"-assets", dir, "crate"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{
		"model crate (crate)",
		"Crate",
		"Planks",
		"(4x2)",
		"1 draw calls, 3 indices",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output does not contain %q:\n%s", want, out.String())
		}
	}
}

func TestRunWithConfigFile(t *testing.T) {
	dir := writeAssets(t)
	config := filepath.Join(t.TempDir(), "anima.toml")
	content := "[log]\nlevel = \"warn\"\n\n[assets]\ndirectory = \"" + filepath.ToSlash(dir) + "\"\n\n[textures]\nfilter = \"nearest\"\n"
	if err := os.WriteFile(config, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run([]string{"-config", config, "crate"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "model crate") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRunList(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-assets", writeAssets(t), "-list"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out.String()) != "crate.obj" {
		t.Errorf("list = %q", out.String())
	}
}

func TestRunErrors(t *testing.T) {
	dir := writeAssets(t)
	tests := []struct {
		name string
		args []string
	}{
		{"no model", []string{"-assets", dir}},
		{"unknown backend", []string{"-assets", dir, "-backend", "metal", "crate"}},
		{"unknown model", []string{"-assets", dir, "table"}},
		{"missing assets", []string{"-assets", filepath.Join(dir, "nope"), "crate"}},
		{"missing config", []string{"-config", filepath.Join(dir, "nope.toml"), "crate"}},
		{"unknown flag", []string{"-verbose", "crate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args, &bytes.Buffer{}); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
