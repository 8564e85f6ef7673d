package workload

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testConfig() Config {
	return Config{Channels: 4, Samples: 16, Seed: 42}
}

func TestGenerateDeterministic(t *testing.T) {
	first := NewGenerator(testConfig()).Generate()
	second := NewGenerator(testConfig()).Generate()

	if !reflect.DeepEqual(first, second) {
		t.Error("same seed produced different recordings")
	}

	other := NewGenerator(Config{Channels: 4, Samples: 16, Seed: 43}).Generate()
	if reflect.DeepEqual(first, other) {
		t.Error("different seeds produced identical recordings")
	}
}

func TestGenerateShape(t *testing.T) {
	rec := NewGenerator(testConfig()).Generate()

	if len(rec.Channels) != 4 {
		t.Fatalf("channels = %d, want 4", len(rec.Channels))
	}
	if len(rec.Timebase) != 16 {
		t.Fatalf("timebase = %d, want 16", len(rec.Timebase))
	}

	for _, ch := range rec.Channels {
		if len(ch.Samples) != 16 {
			t.Errorf("channel %s samples = %d, want 16",
				ch.Name, len(ch.Samples))
		}
	}

	if rec.SampleCount() != 64 {
		t.Errorf("SampleCount = %d, want 64", rec.SampleCount())
	}
}

func TestCodecRoundTrip(t *testing.T) {
	rec := NewGenerator(testConfig()).Generate()
	dir := t.TempDir()

	for _, c := range Codecs() {
		for _, lz4 := range []bool{false, true} {
			path := FixturePath(dir, c, lz4)

			if err := c.Save(rec, path); err != nil {
				t.Fatalf("%s save (lz4=%v): %v", c.Name(), lz4, err)
			}

			got, err := c.Open(path)
			if err != nil {
				t.Fatalf("%s open (lz4=%v): %v", c.Name(), lz4, err)
			}

			if !reflect.DeepEqual(got, rec) {
				t.Errorf("%s round trip (lz4=%v) altered the recording",
					c.Name(), lz4)
			}
		}
	}
}

func TestOpenMissingFile(t *testing.T) {
	for _, c := range Codecs() {
		if _, err := c.Open(filepath.Join(t.TempDir(), "absent.dat")); err == nil {
			t.Errorf("%s open of missing file succeeded", c.Name())
		}
	}
}

func TestConvert(t *testing.T) {
	rec := NewGenerator(testConfig()).Generate()
	dir := t.TempDir()

	gobPath := filepath.Join(dir, "in.gob")
	jsonPath := filepath.Join(dir, "out.json")

	if err := (GobCodec{}).Save(rec, gobPath); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Convert(GobCodec{}, JSONCodec{}, gobPath, jsonPath); err != nil {
		t.Fatalf("convert: %v", err)
	}

	got, err := (JSONCodec{}).Open(jsonPath)
	if err != nil {
		t.Fatalf("open converted: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Error("conversion altered the recording")
	}
}

func TestMerge(t *testing.T) {
	rec := NewGenerator(testConfig()).Generate()

	merged, err := Merge(rec, rec, rec)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	if got := merged.SampleCount(); got != 3*rec.SampleCount() {
		t.Errorf("merged samples = %d, want %d", got, 3*rec.SampleCount())
	}
	if len(merged.Timebase) != 3*len(rec.Timebase) {
		t.Errorf("merged timebase = %d, want %d",
			len(merged.Timebase), 3*len(rec.Timebase))
	}

	for i := 1; i < len(merged.Timebase); i++ {
		if merged.Timebase[i] <= merged.Timebase[i-1] {
			t.Fatalf("timebase not monotonic at %d: %f <= %f",
				i, merged.Timebase[i], merged.Timebase[i-1])
		}
	}

	// The inputs must not be mutated by the merge.
	if rec.SampleCount() != 64 {
		t.Error("merge mutated its input recording")
	}
}

func TestMergeChannelMismatch(t *testing.T) {
	a := NewGenerator(Config{Channels: 2, Samples: 4, Seed: 1}).Generate()
	b := NewGenerator(Config{Channels: 3, Samples: 4, Seed: 1}).Generate()

	if _, err := Merge(a, b); err == nil {
		t.Error("expected error for mismatched channel counts")
	}
}

func TestScanSamples(t *testing.T) {
	rec := &Recording{
		Timebase: []float64{0, 1},
		Channels: []Channel{
			{Name: "a", Samples: []float64{1, 2}},
			{Name: "b", Samples: []float64{3, 4}},
		},
	}

	n, sum := rec.ScanSamples()
	if n != 4 {
		t.Errorf("n = %d, want 4", n)
	}
	if sum != 10 {
		t.Errorf("sum = %f, want 10", sum)
	}
}

func TestGenerateFixturesIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()

	if err := GenerateFixtures(dir, cfg); err != nil {
		t.Fatalf("GenerateFixtures: %v", err)
	}

	path := FixturePath(dir, GobCodec{}, false)

	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("fixture missing: %v", err)
	}

	// Second invocation must skip existing fixtures.
	if err := GenerateFixtures(dir, cfg); err != nil {
		t.Fatalf("second GenerateFixtures: %v", err)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("fixture missing after second run: %v", err)
	}

	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("existing fixture was rewritten")
	}
}

func TestBuildRegistryLayout(t *testing.T) {
	reg := BuildRegistry(t.TempDir(), testConfig())

	wantSections := []string{
		"Open file",
		"Save file",
		"Get all channels",
		"Convert file",
		"Merge 3 files",
	}

	sections := reg.Sections()
	if len(sections) != len(wantSections) {
		t.Fatalf("sections = %d, want %d", len(sections), len(wantSections))
	}

	for i, title := range wantSections {
		if sections[i].Title != title {
			t.Errorf("section %d = %q, want %q", i, sections[i].Title, title)
		}
	}

	// One row per codec variant in the variant sections.
	for _, title := range []string{"Open file", "Save file",
		"Get all channels", "Merge 3 files"} {
		for _, sec := range sections {
			if sec.Title == title && len(sec.Entries) != 4 {
				t.Errorf("%s entries = %d, want 4", title, len(sec.Entries))
			}
		}
	}
}

func TestRegistryScenariosRun(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()

	if err := GenerateFixtures(dir, cfg); err != nil {
		t.Fatalf("GenerateFixtures: %v", err)
	}

	reg := BuildRegistry(dir, cfg)

	for _, sec := range reg.Sections() {
		for _, entry := range sec.Entries {
			if entry.Setup != nil {
				if err := entry.Setup(); err != nil {
					t.Fatalf("%s / %s setup: %v",
						sec.Title, entry.Label, err)
				}
			}

			if err := entry.Run(); err != nil {
				t.Errorf("%s / %s: %v", sec.Title, entry.Label, err)
			}
		}
	}

	// Save and convert scenarios must have produced scratch files.
	for _, path := range ScratchFiles(dir) {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("scratch file %s missing: %v", path, err)
		}
	}
}

func TestScratchFiles(t *testing.T) {
	paths := ScratchFiles("tmp")

	if len(paths) != 4 {
		t.Fatalf("scratch files = %d, want 4", len(paths))
	}

	seen := make(map[string]bool)
	for _, p := range paths {
		seen[filepath.Base(p)] = true
	}

	for _, want := range []string{"x.gob", "x.gob.lz4", "x.json", "x.json.lz4"} {
		if !seen[want] {
			t.Errorf("missing scratch file %s in %v", want, paths)
		}
	}
}
