package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/picam/internal/capture"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	if c.Addr != ":5000" {
		t.Errorf("Addr = %q, want :5000", c.Addr)
	}
	if c.Pipeline != capture.DefaultPipeline || c.DeviceID != 0 {
		t.Errorf("Pipeline = %q, DeviceID = %d, want default pipeline and device 0", c.Pipeline, c.DeviceID)
	}
	if c.FPS != 10 {
		t.Errorf("FPS = %d, want 10", c.FPS)
	}
	if c.Orientation() != capture.OrientationBoth {
		t.Errorf("Orientation() = %q, want both", c.Orientation())
	}
	if filepath.Base(c.SaveDir) != "training_images" {
		t.Errorf("SaveDir = %q, want .../training_images", c.SaveDir)
	}
	if c.RetryInterval() != 100*time.Millisecond {
		t.Errorf("RetryInterval() = %s, want 100ms", c.RetryInterval())
	}
	if c.StreamPoll() != 50*time.Millisecond {
		t.Errorf("StreamPoll() = %s, want 50ms", c.StreamPoll())
	}
	if c.StreamInterval() != 100*time.Millisecond {
		t.Errorf("StreamInterval() = %s, want 100ms", c.StreamInterval())
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestValidate_ClampsValues(t *testing.T) {
	c := &Config{
		Flip:        "vertical",
		FPS:         -1,
		JPEGQuality: 400,
	}

	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	d := DefaultConfig()
	if c.FPS != d.FPS {
		t.Errorf("FPS = %d, want %d", c.FPS, d.FPS)
	}
	if c.JPEGQuality != d.JPEGQuality {
		t.Errorf("JPEGQuality = %d, want %d", c.JPEGQuality, d.JPEGQuality)
	}
	if c.Addr != d.Addr || c.SaveDir != d.SaveDir || c.StreamPollMs != d.StreamPollMs {
		t.Errorf("empty fields not defaulted: %+v", c)
	}
	if c.Orientation() != capture.OrientationVertical {
		t.Errorf("Orientation() = %q, want vertical", c.Orientation())
	}
}

func TestValidate_RejectsUnknownFlip(t *testing.T) {
	c := DefaultConfig()
	c.Flip = "diagonal"

	if err := c.Validate(); err == nil {
		t.Error("Validate() should reject an unknown flip")
	}
	if c.Orientation() != capture.OrientationNone {
		t.Errorf("Orientation() = %q, want none for invalid flip", c.Orientation())
	}
}

func TestSource(t *testing.T) {
	c := DefaultConfig()
	c.Pipeline = ""
	c.DeviceID = 3

	src := c.Source()
	if src.Pipeline != "" || src.DeviceID != 3 || src.Width != c.Width || src.FPS != c.FPS {
		t.Errorf("Source() = %+v", src)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Addr != DefaultConfig().Addr {
		t.Errorf("Addr = %q, want default", c.Addr)
	}
}

func TestLoad_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picam.json")

	c := DefaultConfig()
	c.Addr = ":9000"
	c.Flip = "none"
	c.SaveDir = "/srv/images"
	if err := c.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Addr != ":9000" || loaded.Flip != "none" || loaded.SaveDir != "/srv/images" {
		t.Errorf("Load() = %+v", loaded)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picam.json")
	if err := os.WriteFile(path, []byte(`{"addr": ":8081"}`), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Addr != ":8081" {
		t.Errorf("Addr = %q, want :8081", c.Addr)
	}
	if c.FPS != DefaultConfig().FPS {
		t.Errorf("FPS = %d, want default", c.FPS)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picam.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c, err := Load(path)
	if err == nil {
		t.Fatal("Load() should fail on invalid JSON")
	}
	if c == nil || c.Addr != DefaultConfig().Addr {
		t.Error("Load() should still return defaults on error")
	}
}
