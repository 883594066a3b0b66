package lib

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// ColorizerModel drives the external neural colorization process. Frames go
// over stdin as raw bgr24 at the render-factor size; colorized frames come
// back over stdout the same way. One model process serves one video.
type ColorizerModel struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	rd         *bufio.Reader
	mu         sync.Mutex
	renderSize int
}

// NewColorizerModel starts the model process and waits for its ready line.
// The model input edge is renderFactor*16 pixels, the convention the
// colorization network is trained around.
func NewColorizerModel(scriptPath string, renderFactor int, deviceID int) (*ColorizerModel, error) {
	renderSize := renderFactor * 16
	cmd := exec.Command(
		"python", "-W", "ignore", scriptPath,
		strconv.Itoa(renderSize),
		strconv.Itoa(deviceID),
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModel, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModel, err)
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting %s: %v", ErrModel, scriptPath, err)
	}

	rd := bufio.NewReader(stdout)
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			cmd.Process.Kill()
			cmd.Wait()
			return nil, fmt.Errorf("%w: waiting for model: %v", ErrModel, err)
		}
		if strings.TrimSpace(line) == "ready" {
			break
		}
	}

	return &ColorizerModel{
		cmd:        cmd,
		stdin:      stdin,
		rd:         rd,
		renderSize: renderSize,
	}, nil
}

// Colorize runs one frame through the model. The frame is downscaled to the
// render size for inference; the colorized result is upscaled back and its
// chrominance is merged with the input's full-resolution luminance, so detail
// survives the round trip through the network.
func (m *ColorizerModel) Colorize(im Image) (Image, error) {
	small := im.Resize(m.renderSize, m.renderSize)

	m.mu.Lock()
	if _, err := m.stdin.Write(small.Bytes); err != nil {
		m.mu.Unlock()
		return Image{}, fmt.Errorf("%w: sending frame: %v", ErrModel, err)
	}
	out := NewImage(m.renderSize, m.renderSize)
	if _, err := io.ReadFull(m.rd, out.Bytes); err != nil {
		m.mu.Unlock()
		return Image{}, fmt.Errorf("%w: reading frame: %v", ErrModel, err)
	}
	m.mu.Unlock()

	up := out.Resize(im.Width, im.Height)
	upLab := ToLab(up)
	origLab := ToLab(im)
	for idx := 0; idx < len(upLab.Bytes); idx += 3 {
		upLab.Bytes[idx] = origLab.Bytes[idx]
	}
	return ToBgrFromLab(upLab), nil
}

func (m *ColorizerModel) Close() {
	m.stdin.Close()
	m.cmd.Wait()
}
