package lib

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// Image is a 3-channel 8-bit pixel buffer in BGR channel order, the layout
// frames arrive in from ffmpeg with -pix_fmt bgr24.
type Image struct {
	Width  int
	Height int
	Bytes  []byte
}

func NewImage(width int, height int) Image {
	return Image{
		Width:  width,
		Height: height,
		Bytes:  make([]byte, 3*width*height),
	}
}

func ImageFromBytes(width int, height int, bytes []byte) Image {
	return Image{
		Width:  width,
		Height: height,
		Bytes:  bytes,
	}
}

func (im Image) Copy() Image {
	buf := make([]byte, len(im.Bytes))
	copy(buf, im.Bytes)
	return Image{
		Width:  im.Width,
		Height: im.Height,
		Bytes:  buf,
	}
}

func (im Image) SameSize(other Image) bool {
	return im.Width == other.Width && im.Height == other.Height
}

func (im Image) SetBGR(i int, j int, c [3]uint8) {
	if i < 0 || i >= im.Width || j < 0 || j >= im.Height {
		return
	}
	for channel := 0; channel < 3; channel++ {
		im.Bytes[(j*im.Width+i)*3+channel] = c[channel]
	}
}

func (im Image) GetBGR(i int, j int) [3]uint8 {
	var c [3]uint8
	for channel := 0; channel < 3; channel++ {
		c[channel] = im.Bytes[(j*im.Width+i)*3+channel]
	}
	return c
}

// ImageToNRGBA bridges a BGR buffer into the image.NRGBA form that the
// imaging and bild libraries operate on.
func ImageToNRGBA(im Image) *image.NRGBA {
	nrgba := image.NewNRGBA(image.Rect(0, 0, im.Width, im.Height))
	idx := 0
	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			b := im.Bytes[idx]
			g := im.Bytes[idx+1]
			r := im.Bytes[idx+2]
			nrgba.SetNRGBA(x, y, color.NRGBA{r, g, b, 255})
			idx += 3
		}
	}
	return nrgba
}

func ImageFromNRGBA(nrgba *image.NRGBA) Image {
	width := nrgba.Bounds().Dx()
	height := nrgba.Bounds().Dy()
	buf := make([]byte, width*height*3)
	idx := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := nrgba.NRGBAAt(x+nrgba.Bounds().Min.X, y+nrgba.Bounds().Min.Y)
			buf[idx] = c.B
			buf[idx+1] = c.G
			buf[idx+2] = c.R
			idx += 3
		}
	}
	return Image{Width: width, Height: height, Bytes: buf}
}

func (im Image) Resize(newWidth, newHeight int) Image {
	if newWidth == im.Width && newHeight == im.Height {
		return im.Copy()
	}
	resized := imaging.Resize(ImageToNRGBA(im), newWidth, newHeight, imaging.Lanczos)
	return ImageFromNRGBA(resized)
}

func (im Image) AsImage() image.Image {
	return ImageToNRGBA(im)
}

func (im Image) AsJPG() []byte {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, im.AsImage(), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func (im Image) AsPNG() []byte {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, im.AsImage()); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Save writes the frame as an image file; the format is picked from the
// file extension.
func (im Image) Save(fname string) error {
	return imaging.Save(ImageToNRGBA(im), fname)
}
