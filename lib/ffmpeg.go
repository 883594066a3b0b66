package lib

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type VideoMeta struct {
	Width  int
	Height int
	FPS    float64
	Frames int
}

// ProbeVideo reads stream metadata with ffprobe. Failures are decode
// failures: the input cannot be read as video.
func ProbeVideo(fname string) (VideoMeta, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=width,height,r_frame_rate,nb_read_packets",
		"-of", "csv=p=0",
		fname)
	out, err := cmd.Output()
	if err != nil {
		return VideoMeta{}, fmt.Errorf("%w: ffprobe %s: %v", ErrDecode, fname, err)
	}

	parts := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(parts) < 4 {
		return VideoMeta{}, fmt.Errorf("%w: ffprobe %s: unexpected output %q", ErrDecode, fname, out)
	}

	var meta VideoMeta
	if meta.Width, err = strconv.Atoi(parts[0]); err != nil {
		return VideoMeta{}, fmt.Errorf("%w: ffprobe %s: bad width %q", ErrDecode, fname, parts[0])
	}
	if meta.Height, err = strconv.Atoi(parts[1]); err != nil {
		return VideoMeta{}, fmt.Errorf("%w: ffprobe %s: bad height %q", ErrDecode, fname, parts[1])
	}
	meta.FPS = parseRate(parts[2])
	meta.Frames, _ = strconv.Atoi(parts[3])

	if meta.Width <= 0 || meta.Height <= 0 {
		return VideoMeta{}, fmt.Errorf("%w: ffprobe %s: no video stream", ErrDecode, fname)
	}
	return meta, nil
}

func parseRate(s string) float64 {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 == nil && err2 == nil && d != 0 {
			return n / d
		}
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// FfmpegReader decodes a video into raw bgr24 frames over a pipe.
type FfmpegReader struct {
	Width  int
	Height int
	cmd    *exec.Cmd
	stdout io.ReadCloser
	rd     *bufio.Reader
}

// ReadFfmpeg starts decoding fname, scaling frames to width x height.
func ReadFfmpeg(fname string, width int, height int) (*FfmpegReader, error) {
	cmd := exec.Command("ffmpeg",
		"-v", "error",
		"-i", fname,
		"-vf", fmt.Sprintf("scale=%dx%d", width, height),
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"pipe:1")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting ffmpeg: %v", ErrDecode, err)
	}
	return &FfmpegReader{
		Width:  width,
		Height: height,
		cmd:    cmd,
		stdout: stdout,
		rd:     bufio.NewReaderSize(stdout, width*height*3),
	}, nil
}

// ReadInto fills im with the next frame. Returns io.EOF after the last frame.
func (rd *FfmpegReader) ReadInto(im Image) error {
	if im.Width != rd.Width || im.Height != rd.Height {
		return fmt.Errorf("%w: reader %dx%d, buffer %dx%d",
			ErrDimensionMismatch, rd.Width, rd.Height, im.Width, im.Height)
	}
	_, err := io.ReadFull(rd.rd, im.Bytes)
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("%w: reading frame: %v", ErrDecode, err)
	}
	return nil
}

// Read allocates and returns the next frame. Returns io.EOF after the last.
func (rd *FfmpegReader) Read() (Image, error) {
	im := NewImage(rd.Width, rd.Height)
	if err := rd.ReadInto(im); err != nil {
		return Image{}, err
	}
	return im, nil
}

func (rd *FfmpegReader) Close() {
	rd.stdout.Close()
	rd.cmd.Wait()
}

// FfmpegWriter encodes raw bgr24 frames pushed over a pipe into an H.264 mp4.
type FfmpegWriter struct {
	Width  int
	Height int
	cmd    *exec.Cmd
	stdin  io.WriteCloser
}

func WriteFfmpeg(fname string, width int, height int, fps float64) (*FfmpegWriter, error) {
	if fps <= 0 {
		fps = 25
	}
	cmd := exec.Command("ffmpeg",
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "pipe:0",
		"-an",
		"-vcodec", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		fname)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg: %v", err)
	}
	return &FfmpegWriter{
		Width:  width,
		Height: height,
		cmd:    cmd,
		stdin:  stdin,
	}, nil
}

func (wr *FfmpegWriter) Write(im Image) error {
	if im.Width != wr.Width || im.Height != wr.Height {
		return fmt.Errorf("%w: writer %dx%d, frame %dx%d",
			ErrDimensionMismatch, wr.Width, wr.Height, im.Width, im.Height)
	}
	_, err := wr.stdin.Write(im.Bytes)
	return err
}

// Close flushes the pipe and waits for the encoder to finish the container.
func (wr *FfmpegWriter) Close() error {
	wr.stdin.Close()
	return wr.cmd.Wait()
}
