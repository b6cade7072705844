package main

import (
	"bufio"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MapMetadata is the ROS-style sidecar describing an occupancy map. The
// editor only needs resolution, origin and the image dimensions; the rest is
// carried along opaquely for re-export.
type MapMetadata struct {
	Image          string    `yaml:"image" json:"image"`
	Resolution     float64   `yaml:"resolution" json:"resolution"`
	Origin         []float64 `yaml:"origin" json:"origin"`
	Negate         int       `yaml:"negate,omitempty" json:"negate,omitempty"`
	OccupiedThresh float64   `yaml:"occupied_thresh,omitempty" json:"occupied_thresh,omitempty"`
	FreeThresh     float64   `yaml:"free_thresh,omitempty" json:"free_thresh,omitempty"`
}

// MapInfo is a loaded map: parsed metadata plus the probed image size.
type MapInfo struct {
	Meta     MapMetadata
	WidthPx  int
	HeightPx int
}

// Transform builds the canvas<->world transform the core consumes.
func (mi *MapInfo) Transform() *MapTransform {
	t := &MapTransform{
		Resolution:    mi.Meta.Resolution,
		ImageHeightPx: float64(mi.HeightPx),
	}
	if len(mi.Meta.Origin) >= 2 {
		t.OriginX = mi.Meta.Origin[0]
		t.OriginY = mi.Meta.Origin[1]
	}
	return t
}

// LoadMap parses a map YAML sidecar and probes the referenced image for its
// pixel dimensions. The occupancy data itself is never decoded here.
func LoadMap(yamlPath string) (*MapInfo, error) {
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, err
	}
	var meta MapMetadata
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
	}
	if meta.Resolution <= 0 {
		return nil, fmt.Errorf("%s: resolution must be > 0, got %g", yamlPath, meta.Resolution)
	}
	if len(meta.Origin) < 2 {
		return nil, fmt.Errorf("%s: origin needs at least 2 elements", yamlPath)
	}
	if meta.Image == "" {
		return nil, fmt.Errorf("%s: missing image", yamlPath)
	}

	imagePath := meta.Image
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(filepath.Dir(yamlPath), imagePath)
	}
	w, h, err := probeImageSize(imagePath)
	if err != nil {
		return nil, err
	}
	return &MapInfo{Meta: meta, WidthPx: w, HeightPx: h}, nil
}

// probeImageSize reads just enough of a PGM or PNG file to learn its
// dimensions.
func probeImageSize(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pgm":
		return readPGMSize(file)
	case ".png":
		cfg, err := png.DecodeConfig(file)
		if err != nil {
			return 0, 0, fmt.Errorf("decode %s: %w", path, err)
		}
		return cfg.Width, cfg.Height, nil
	}
	return 0, 0, fmt.Errorf("unsupported map image format: %s", path)
}

// readPGMSize parses a P5/P2 header: magic, optional comments, then width
// and height.
func readPGMSize(file *os.File) (int, int, error) {
	reader := bufio.NewReader(file)
	var fields []string
	for len(fields) < 3 {
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			return 0, 0, fmt.Errorf("truncated PGM header")
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields = append(fields, strings.Fields(line)...)
	}
	if fields[0] != "P5" && fields[0] != "P2" {
		return 0, 0, fmt.Errorf("not a PGM file (magic %q)", fields[0])
	}
	w, err := strconv.Atoi(fields[1])
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("bad PGM width %q", fields[1])
	}
	h, err := strconv.Atoi(fields[2])
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("bad PGM height %q", fields[2])
	}
	return w, h, nil
}
