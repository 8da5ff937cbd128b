package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// AudioInfo summarizes the first audio stream of a media file.
type AudioInfo struct {
	Duration   string `json:"duration"`
	Codec      string `json:"codec"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Probe runs ffprobe against the first audio stream of a file. Files with no
// audio stream yield an AudioInfo with an empty Codec.
func Probe(ctx context.Context, filePath string) (*AudioInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name,sample_rate,channels",
		"-show_entries", "format=duration",
		"-print_format", "json",
		filePath,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", filePath, err)
	}

	var probed struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecName  string `json:"codec_name"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &probed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &AudioInfo{Duration: probed.Format.Duration}
	if len(probed.Streams) > 0 {
		info.Codec = probed.Streams[0].CodecName
		info.SampleRate = probed.Streams[0].SampleRate
		info.Channels = probed.Streams[0].Channels
	}
	return info, nil
}
