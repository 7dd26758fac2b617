// Package wav reads the 16-bit PCM RIFF/WAVE files produced by the extraction
// step in fixed-size frame chunks.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

const pcmFormat = 1

// ErrNotWAV reports a file without a readable RIFF/WAVE header.
var ErrNotWAV = errors.New("not a RIFF/WAVE file")

// Header holds the format fields the pipeline relies on.
type Header struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	DataSize      int64
}

// FrameSize is the number of bytes per frame (one sample per channel).
func (h Header) FrameSize() int {
	return h.Channels * h.BitsPerSample / 8
}

// Frames is the total frame count of the data chunk.
func (h Header) Frames() int64 {
	size := h.FrameSize()
	if size <= 0 {
		return 0
	}
	return h.DataSize / int64(size)
}

// Duration returns the audio length in seconds.
func (h Header) Duration() float64 {
	if h.SampleRate <= 0 {
		return 0
	}
	return float64(h.Frames()) / float64(h.SampleRate)
}

// Reader streams the data chunk of a WAV file.
type Reader struct {
	file    *os.File
	decoder *gowav.Decoder
	header  Header
	// remaining counts samples, not frames.
	remaining int64
	buf       *audio.IntBuffer
}

// Open parses the header of path and positions the reader at the first frame.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat wav: %w", err)
	}

	decoder := gowav.NewDecoder(file)
	if !decoder.IsValidFile() {
		file.Close()
		return nil, fmt.Errorf("parse wav %s: %w", path, ErrNotWAV)
	}
	if err := decoder.FwdToPCM(); err != nil {
		file.Close()
		return nil, fmt.Errorf("parse wav %s: %w", path, err)
	}
	if decoder.PCMChunk == nil {
		file.Close()
		return nil, fmt.Errorf("parse wav %s: missing data chunk", path)
	}

	header := Header{
		SampleRate:    int(decoder.SampleRate),
		Channels:      int(decoder.NumChans),
		BitsPerSample: int(decoder.BitDepth),
		DataSize:      decoder.PCMLen(),
	}
	if header.FrameSize() <= 0 {
		file.Close()
		return nil, fmt.Errorf("parse wav %s: invalid frame layout: %d channels, %d bits", path, header.Channels, header.BitsPerSample)
	}
	// Streaming encoders leave a placeholder size when they cannot seek back.
	if offset, err := file.Seek(0, io.SeekCurrent); err == nil {
		if available := info.Size() - offset; header.DataSize > available || header.DataSize < 0 {
			header.DataSize = max(available, 0)
		}
	}

	return &Reader{
		file:      file,
		decoder:   decoder,
		header:    header,
		remaining: header.Frames() * int64(header.Channels),
	}, nil
}

// ReadHeader opens path only long enough to parse its header.
func ReadHeader(path string) (Header, error) {
	r, err := Open(path)
	if err != nil {
		return Header{}, err
	}
	defer r.Close()
	return r.Header(), nil
}

// Header returns the parsed format description.
func (r *Reader) Header() Header {
	return r.header
}

// ReadFrames reads up to frames whole frames. It returns little-endian 16-bit
// PCM bytes and the number of frames they hold, or io.EOF once the data chunk
// is exhausted.
func (r *Reader) ReadFrames(frames int) ([]byte, int, error) {
	if frames <= 0 {
		return nil, 0, fmt.Errorf("read wav: invalid chunk of %d frames", frames)
	}
	if r.header.BitsPerSample != 16 {
		return nil, 0, fmt.Errorf("read wav: unsupported bit depth %d", r.header.BitsPerSample)
	}
	if r.remaining <= 0 {
		return nil, 0, io.EOF
	}

	channels := r.header.Channels
	want := int(min(int64(frames*channels), r.remaining))
	if r.buf == nil || cap(r.buf.Data) < want {
		r.buf = &audio.IntBuffer{Data: make([]int, want)}
	}
	r.buf.Data = r.buf.Data[:want]

	n, err := r.decoder.PCMBuffer(r.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("read wav: %w", err)
	}
	if n < want {
		r.remaining = 0
	} else {
		r.remaining -= int64(n)
	}
	n -= n % channels
	if n == 0 {
		return nil, 0, io.EOF
	}

	data := make([]byte, n*2)
	for i, sample := range r.buf.Data[:n] {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(sample)))
	}
	return data, n / channels, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// WriteFile writes silent 16-bit PCM of the given channel and frame count to path.
func WriteFile(path string, sampleRate, channels, frames int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	encoder := gowav.NewEncoder(file, sampleRate, 16, channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, frames*channels),
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		file.Close()
		return err
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
