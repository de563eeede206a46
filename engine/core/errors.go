package core

import (
	"errors"
	"fmt"
)

var (
	ErrParse            = errors.New("asset could not be parsed")
	ErrMissingNormalMap = errors.New("material has no normal map")
	ErrTextureLoad      = errors.New("texture could not be loaded")
	ErrUnknown          = errors.New("unknown")
)

// ParseError reports an asset that is missing, unreadable or structurally
// invalid. Line is 0 when the failure is not tied to a specific line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func NewParseError(path string, line int, format string, args ...interface{}) *ParseError {
	return &ParseError{Path: path, Line: line, Err: fmt.Errorf(format, args...)}
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// MissingNormalMapError is returned when a material neither names a normal map
// nor carries the "map_Bump" fallback key.
type MissingNormalMapError struct {
	Material string
}

func (e *MissingNormalMapError) Error() string {
	return fmt.Sprintf("material '%s': no normal map and no map_Bump fallback", e.Material)
}

func (e *MissingNormalMapError) Is(target error) bool { return target == ErrMissingNormalMap }

type TextureLoadError struct {
	Path string
	Err  error
}

func (e *TextureLoadError) Error() string {
	return fmt.Sprintf("load texture %s: %v", e.Path, e.Err)
}

func (e *TextureLoadError) Unwrap() error { return e.Err }

func (e *TextureLoadError) Is(target error) bool { return target == ErrTextureLoad }
