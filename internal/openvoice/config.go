package openvoice

import (
	"encoding/json"
	"os"
	"sort"
)

// CheckpointConfig is the subset of an OpenVoice checkpoint config.json the
// service reads. The base speaker config carries the speakers map; the
// converter config has no speakers.
type CheckpointConfig struct {
	Speakers map[string]int `json:"speakers"`
	Data     struct {
		SamplingRate int `json:"sampling_rate"`
	} `json:"data"`
}

// LoadCheckpointConfig parses a checkpoint config.json.
func LoadCheckpointConfig(path string) (*CheckpointConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg CheckpointConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SpeakerIDs returns the configured speaker ids in stable sorted order.
func (c *CheckpointConfig) SpeakerIDs() []string {
	ids := make([]string, 0, len(c.Speakers))
	for id := range c.Speakers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
