package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/cheese-engine/internal/board"
)

// Glyph outlines on a 45x45 viewbox.
var glyphs = map[board.PieceKind]string{
	board.Pawn: `<circle cx="22.5" cy="15" r="6"/>
<path d="M 13 38 L 32 38 L 28 24 L 17 24 Z"/>`,
	board.Knight: `<path d="M 12 38 L 34 38 L 32 22 C 31 14 26 9 19 9 L 18 13 L 11 21 L 13 25 L 19 22 L 14 33 Z"/>`,
	board.Bishop: `<circle cx="22.5" cy="9" r="3"/>
<ellipse cx="22.5" cy="22" rx="7" ry="10"/>
<rect x="12" y="34" width="21" height="4"/>`,
	board.Rook: `<path d="M 11 38 L 34 38 L 34 34 L 31 34 L 30 17 L 33 17 L 33 10 L 29 10 L 29 13 L 25 13 L 25 10 L 20 10 L 20 13 L 16 13 L 16 10 L 12 10 L 12 17 L 15 17 L 14 34 L 11 34 Z"/>`,
	board.Queen: `<path d="M 10 38 L 35 38 L 33 30 L 38 14 L 29 24 L 26 10 L 22.5 24 L 19 10 L 16 24 L 7 14 L 12 30 Z"/>`,
	board.King: `<path d="M 21 4 L 24 4 L 24 8 L 28 8 L 28 11 L 24 11 L 24 17 L 21 17 L 21 11 L 17 11 L 17 8 L 21 8 Z"/>
<path d="M 11 38 L 34 38 L 32 28 C 38 22 34 15 28 17 L 22.5 23 L 17 17 C 11 15 7 22 13 28 Z"/>`,
}

func pieceSVG(kind board.PieceKind, side board.Color) ([]byte, error) {
	body, ok := glyphs[kind]
	if !ok {
		return nil, fmt.Errorf("no glyph for piece kind %d", kind)
	}
	fill, stroke := "#ffffff", "#000000"
	if side == board.Black {
		fill, stroke = "#000000", "#ffffff"
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="45" height="45" viewBox="0 0 45 45">`)
	fmt.Fprintf(&b, `<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">`, fill, stroke)
	b.WriteString(body)
	b.WriteString(`</g></svg>`)
	return b.Bytes(), nil
}

type pieceCacheKey struct {
	kind board.PieceKind
	side board.Color
	size int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(kind board.PieceKind, side board.Color, size int) (image.Image, error) {
	key := pieceCacheKey{kind: kind, side: side, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	data, err := pieceSVG(kind, side)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()
	return img, nil
}
