package core

import (
	"errors"
	"io/fs"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	parse := &ParseError{Path: "cube.obj", Line: 3, Err: fs.ErrNotExist}
	if !errors.Is(parse, ErrParse) {
		t.Errorf("ParseError should match ErrParse")
	}
	if !errors.Is(parse, fs.ErrNotExist) {
		t.Errorf("ParseError should unwrap to its cause")
	}
	if got, want := parse.Error(), "parse cube.obj:3: file does not exist"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	missing := &MissingNormalMapError{Material: "Stone"}
	if !errors.Is(missing, ErrMissingNormalMap) || errors.Is(missing, ErrParse) {
		t.Errorf("MissingNormalMapError matched the wrong sentinel")
	}

	tex := &TextureLoadError{Path: "a.png", Err: errors.New("boom")}
	var target *TextureLoadError
	if !errors.As(tex, &target) || !errors.Is(tex, ErrTextureLoad) {
		t.Errorf("TextureLoadError should be matchable by type and sentinel")
	}
}
