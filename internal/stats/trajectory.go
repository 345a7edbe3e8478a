package stats

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"hpfold/internal/model"
)

// Frame is one sampled conformation of a search trajectory.
type Frame struct {
	Step      int              `json:"step"`
	Energy    int              `json:"energy"`
	Positions []model.Position `json:"positions"`
}

// WriteTrajectory stores frames as zstd compressed JSON lines.
func WriteTrajectory(w io.Writer, frames []Frame) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	jsonEnc := json.NewEncoder(enc)
	for i, frame := range frames {
		if err := jsonEnc.Encode(frame); err != nil {
			_ = enc.Close()
			return fmt.Errorf("encode frame %d: %w", i, err)
		}
	}
	return enc.Close()
}

func ReadTrajectory(r io.Reader) ([]Frame, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	jsonDec := json.NewDecoder(bufio.NewReader(dec))
	frames := make([]Frame, 0, 64)
	for {
		var frame Frame
		err := jsonDec.Decode(&frame)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", len(frames), err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func WriteTrajectoryFile(path string, frames []Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTrajectory(f, frames); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func ReadTrajectoryFile(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTrajectory(f)
}
