package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/cheese-engine/internal/board"
)

const (
	squareSize = 64
	sideMargin = 28
	topMargin  = 40
	boardSize  = squareSize * 8
)

var (
	lightSquare     = color.RGBA{233, 207, 163, 255}
	darkSquare      = color.RGBA{187, 136, 96, 255}
	backgroundColor = color.RGBA{28, 31, 46, 255}
	highlightFill   = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	captionColor    = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	coordinateColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// Options controls the diagram decorations.
type Options struct {
	// LastMove is highlighted when it names two squares.
	LastMove board.Move
	Caption  string
}

// PNG draws pos from white's side.
func PNG(ctx context.Context, pos *board.Position, opts Options) ([]byte, error) {
	if pos == nil {
		return nil, fmt.Errorf("position is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	width := boardSize + sideMargin*2
	height := boardSize + topMargin + sideMargin
	origin := image.Point{X: sideMargin, Y: topMargin}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	drawSquares(img, origin)
	if from, to, ok := moveSquares(opts.LastMove); ok {
		drawSquareOverlay(img, from, origin, highlightFill)
		drawSquareOverlay(img, to, origin, highlightFill)
	}
	for _, pc := range pos.Pieces() {
		glyph, err := renderPieceImage(pc.Kind, pc.Color, squareSize)
		if err != nil {
			return nil, err
		}
		draw.Draw(img, squareRect(pc.Square, origin), glyph, image.Point{}, draw.Over)
	}

	caption := opts.Caption
	if caption == "" {
		caption = pos.SideToMove().String() + " to move"
	}
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	drawer.Src = image.NewUniform(captionColor)
	drawer.Dot = fixed.P(sideMargin, topMargin-14)
	drawer.DrawString(caption)
	drawCoordinates(drawer, origin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders pos into path.
func WriteFile(ctx context.Context, path string, pos *board.Position, opts Options) error {
	data, err := PNG(ctx, pos, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func drawSquares(dst draw.Image, origin image.Point) {
	for sq := 0; sq < 64; sq++ {
		clr := lightSquare
		if (sq%8+sq/8)%2 == 0 {
			clr = darkSquare
		}
		draw.Draw(dst, squareRect(sq, origin), image.NewUniform(clr), image.Point{}, draw.Src)
	}
}

func drawSquareOverlay(dst draw.Image, sq int, origin image.Point, clr color.Color) {
	draw.Draw(dst, squareRect(sq, origin), image.NewUniform(clr), image.Point{}, draw.Over)
}

func drawCoordinates(drawer *font.Drawer, origin image.Point) {
	drawer.Src = image.NewUniform(coordinateColor)
	ascent := drawer.Face.Metrics().Ascent.Ceil()
	for i := 0; i < 8; i++ {
		rank := string(rune('8' - i))
		file := string(rune('a' + i))
		drawCenteredText(drawer, rank, origin.X-sideMargin/2, origin.Y+i*squareSize+squareSize/2+ascent/2)
		drawCenteredText(drawer, file, origin.X+i*squareSize+squareSize/2, origin.Y+boardSize+ascent+4)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

// squareRect maps a1=0 .. h8=63 to pixels with rank 8 on top.
func squareRect(sq int, origin image.Point) image.Rectangle {
	col := sq % 8
	row := 7 - sq/8
	x := origin.X + col*squareSize
	y := origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func moveSquares(m board.Move) (int, int, bool) {
	s := string(m)
	if len(s) < 4 || m == board.NullMove {
		return 0, 0, false
	}
	from, ok1 := squareIndex(s[0:2])
	to, ok2 := squareIndex(s[2:4])
	return from, to, ok1 && ok2
}

func squareIndex(s string) (int, bool) {
	if s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, false
	}
	return int(s[1]-'1')*8 + int(s[0]-'a'), true
}
