package export

import (
	"fmt"
	"image"
	"image/color/palette"
	imgdraw "image/draw"
	"image/gif"
	"io"

	"github.com/san-kum/nlink/internal/dynamo"
)

const (
	gifSizeIn = 4.0
	gifDPI    = 96
)

// GIFRecorder renders every snapshot it observes as one animation frame on
// fixed square axes of ±extent.
type GIFRecorder struct {
	extent float64
	delay  int
	every  int
	seen   int
	frames []*image.Paletted
}

// NewGIFRecorder creates a recorder for a chain of total length extent. delay
// is the frame delay in hundredths of a second.
func NewGIFRecorder(extent float64, delay int) *GIFRecorder {
	return &GIFRecorder{extent: extent, delay: delay, every: 1}
}

// SetStride keeps only every n-th observed snapshot.
func (g *GIFRecorder) SetStride(n int) {
	if n > 0 {
		g.every = n
	}
}

func (g *GIFRecorder) OnSnapshot(snap dynamo.Snapshot) error {
	g.seen++
	if (g.seen-1)%g.every != 0 {
		return nil
	}
	if !snap.State.IsValid() {
		return nil
	}

	p, err := FramePlot(snap.Frame(), g.extent, fmt.Sprintf("t = %.2f s", snap.Time))
	if err != nil {
		return err
	}
	img := RenderImage(p, gifSizeIn, gifSizeIn, gifDPI)

	frame := image.NewPaletted(img.Bounds(), palette.Plan9)
	imgdraw.Draw(frame, frame.Bounds(), img, img.Bounds().Min, imgdraw.Src)
	g.frames = append(g.frames, frame)
	return nil
}

func (g *GIFRecorder) Len() int { return len(g.frames) }

// Encode writes the animation, looping forever.
func (g *GIFRecorder) Encode(w io.Writer) error {
	if len(g.frames) == 0 {
		return fmt.Errorf("gif: no frames recorded")
	}
	anim := &gif.GIF{
		Image: g.frames,
		Delay: make([]int, len(g.frames)),
	}
	for i := range anim.Delay {
		anim.Delay[i] = g.delay
	}
	return gif.EncodeAll(w, anim)
}
