package workload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chanbench/chanbench/scenario"
)

// Fixture and scratch base names. Fixtures are written once per run
// directory and shared by every scenario that opens them; scratch
// files are produced by save/convert scenarios and removed by the
// harness cleanup.
const (
	fixtureBase = "test"
	scratchBase = "x"
)

// FixturePath returns the fixture file for a codec variant.
func FixturePath(dir string, c Codec, lz4 bool) string {
	return variantPath(dir, fixtureBase, c, lz4)
}

// ScratchPath returns the scratch output file for a codec variant.
func ScratchPath(dir string, c Codec, lz4 bool) string {
	return variantPath(dir, scratchBase, c, lz4)
}

func variantPath(dir, base string, c Codec, lz4 bool) string {
	name := base + c.Ext()
	if lz4 {
		name += ".lz4"
	}

	return filepath.Join(dir, name)
}

// ScratchFiles lists every scratch artifact a run may leave behind.
func ScratchFiles(dir string) []string {
	var paths []string
	for _, c := range Codecs() {
		paths = append(paths,
			ScratchPath(dir, c, false),
			ScratchPath(dir, c, true),
		)
	}

	return paths
}

// GenerateFixtures writes the fixture files for every codec variant,
// skipping any that already exist.
func GenerateFixtures(dir string, cfg Config) error {
	rec := NewGenerator(cfg).Generate()

	for _, c := range Codecs() {
		for _, lz4 := range []bool{false, true} {
			path := FixturePath(dir, c, lz4)

			if _, err := os.Stat(path); err == nil {
				continue
			}

			if err := c.Save(rec, path); err != nil {
				return fmt.Errorf("generate fixture %s: %w", path, err)
			}
		}
	}

	return nil
}

// FixtureStat describes one fixture file for the report preamble.
type FixtureStat struct {
	Path     string
	SizeMB   int64
	Channels int
	Samples  int
}

// FixtureStats inspects the uncompressed fixtures.
func FixtureStats(dir string, cfg Config) ([]FixtureStat, error) {
	stats := make([]FixtureStat, 0, len(Codecs()))

	for _, c := range Codecs() {
		path := FixturePath(dir, c, false)

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat fixture %s: %w", path, err)
		}

		stats = append(stats, FixtureStat{
			Path:     path,
			SizeMB:   info.Size() / 1024 / 1024,
			Channels: cfg.Channels,
			Samples:  cfg.Samples,
		})
	}

	return stats, nil
}

type variant struct {
	codec Codec
	lz4   bool
}

func variants() []variant {
	var vs []variant
	for _, c := range Codecs() {
		vs = append(vs, variant{codec: c}, variant{codec: c, lz4: true})
	}

	return vs
}

func (v variant) label() string {
	label := fmt.Sprintf("%s %s", v.codec.Name(), v.codec.Version())
	if v.lz4 {
		label += " lz4"
	}

	return label
}

// BuildRegistry assembles the full scenario catalogue over the fixture
// directory. Parent and worker call this with the same configuration,
// so entry ordinals agree across the process boundary.
func BuildRegistry(dir string, cfg Config) *scenario.Registry {
	reg := scenario.NewRegistry()

	for _, v := range variants() {
		v := v
		fixture := FixturePath(dir, v.codec, v.lz4)

		reg.Add("Open file", v.label(), func() error {
			_, err := v.codec.Open(fixture)
			return err
		})
	}

	for _, v := range variants() {
		v := v
		fixture := FixturePath(dir, v.codec, v.lz4)
		scratch := ScratchPath(dir, v.codec, v.lz4)

		var rec *Recording

		reg.AddWithSetup("Save file", v.label(),
			func() error {
				var err error
				rec, err = v.codec.Open(fixture)
				return err
			},
			func() error {
				return v.codec.Save(rec, scratch)
			},
		)
	}

	for _, v := range variants() {
		v := v
		fixture := FixturePath(dir, v.codec, v.lz4)

		var rec *Recording

		reg.AddWithSetup("Get all channels", v.label(),
			func() error {
				var err error
				rec, err = v.codec.Open(fixture)
				return err
			},
			func() error {
				n, _ := rec.ScanSamples()
				if n == 0 {
					return fmt.Errorf("recording %s has no samples", fixture)
				}

				return nil
			},
		)
	}

	codecs := Codecs()
	for i, from := range codecs {
		from := from
		to := codecs[(i+1)%len(codecs)]

		label := fmt.Sprintf("%s %s to %s", from.Name(), from.Version(),
			to.Name())
		fixture := FixturePath(dir, from, false)
		scratch := ScratchPath(dir, to, false)

		var rec *Recording

		reg.AddWithSetup("Convert file", label,
			func() error {
				var err error
				rec, err = from.Open(fixture)
				return err
			},
			func() error {
				return to.Save(rec, scratch)
			},
		)
	}

	for _, v := range variants() {
		v := v
		fixture := FixturePath(dir, v.codec, v.lz4)

		reg.Add("Merge 3 files", v.label(), func() error {
			recs := make([]*Recording, 3)
			for i := range recs {
				rec, err := v.codec.Open(fixture)
				if err != nil {
					return err
				}

				recs[i] = rec
			}

			_, err := Merge(recs...)
			return err
		})
	}

	return reg
}
