package ui

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontSet holds the faces used by the renderer.
type fontSet struct {
	score font.Face
	title font.Face
	small font.Face
}

func newFontSet() (*fontSet, error) {
	tt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}

	face := func(size float64) (font.Face, error) {
		return opentype.NewFace(tt, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	score, err := face(32)
	if err != nil {
		return nil, err
	}
	title, err := face(26)
	if err != nil {
		return nil, err
	}
	small, err := face(12)
	if err != nil {
		return nil, err
	}

	return &fontSet{score: score, title: title, small: small}, nil
}
