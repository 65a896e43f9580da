package collector

import (
	"fmt"
	"os"

	"bgmatrix/internal/glucose"

	"gopkg.in/yaml.v3"
)

type readingFile struct {
	Readings []fileReading `yaml:"readings"`
}

type fileReading struct {
	SGV       int    `yaml:"sgv"`
	Epoch     int64  `yaml:"epoch"`
	Direction string `yaml:"direction"`
}

// LoadFile reads a YAML reading list, oldest first:
//
//	readings:
//	  - {sgv: 104, epoch: 1700000000, direction: Flat}
func LoadFile(path string) ([]glucose.Reading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read readings %q: %w", path, err)
	}
	return ParseReadings(data)
}

// ParseReadings decodes the LoadFile format. Epochs must not decrease.
func ParseReadings(data []byte) ([]glucose.Reading, error) {
	var f readingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse readings: %w", err)
	}
	out := make([]glucose.Reading, 0, len(f.Readings))
	for i, r := range f.Readings {
		if i > 0 && r.Epoch < f.Readings[i-1].Epoch {
			return nil, fmt.Errorf("parse readings: entry %d: epoch %d before %d", i, r.Epoch, f.Readings[i-1].Epoch)
		}
		out = append(out, glucose.Reading{SGV: r.SGV, Epoch: r.Epoch, Trend: glucose.ParseTrend(r.Direction)})
	}
	return out, nil
}
