// Package config loads scanpad configuration.
// Values come from defaults, an optional .env file, an optional YAML file
// and SCANPAD_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for scanpad.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	OCR       OCRConfig       `yaml:"ocr"`
	Transform TransformConfig `yaml:"transform"`
	Canvas    CanvasConfig    `yaml:"canvas"`
	Capture   CaptureConfig   `yaml:"capture"`
	Export    ExportConfig    `yaml:"export"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// OCRConfig holds text recognition settings.
type OCRConfig struct {
	Language       string `yaml:"language"`
	TessdataPrefix string `yaml:"tessdata_prefix"`
}

// TransformConfig holds pixel filter settings.
type TransformConfig struct {
	BrightnessFactor float64 `yaml:"brightness_factor"`
}

// CanvasConfig holds the crop overlay style.
type CanvasConfig struct {
	OverlayColor string `yaml:"overlay_color"`
	OverlayWidth int    `yaml:"overlay_width"`
	OverlayDash  int    `yaml:"overlay_dash"`
}

// CaptureConfig selects the capture device.
type CaptureConfig struct {
	Device    string `yaml:"device"` // file, camera or none
	CameraID  int    `yaml:"camera_id"`
	FramePath string `yaml:"frame_path"`
}

// ExportConfig holds artifact settings.
type ExportConfig struct {
	OutputDir    string     `yaml:"output_dir"`
	DocumentName string     `yaml:"document_name"`
	TextName     string     `yaml:"text_name"`
	Page         PageConfig `yaml:"page"`
}

// PageConfig is the document page and where the image sits on it.
type PageConfig struct {
	Orientation string  `yaml:"orientation"` // P or L
	Unit        string  `yaml:"unit"`
	Size        string  `yaml:"size"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
}

// Capture devices.
const (
	DeviceFile   = "file"
	DeviceCamera = "camera"
	DeviceNone   = "none"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		OCR: OCRConfig{
			Language: "eng",
		},
		Transform: TransformConfig{
			BrightnessFactor: 1.1,
		},
		Canvas: CanvasConfig{
			OverlayColor: "#00ffff",
			OverlayWidth: 2,
			OverlayDash:  6,
		},
		Capture: CaptureConfig{
			Device: DeviceFile,
		},
		Export: ExportConfig{
			OutputDir:    ".",
			DocumentName: "scan.pdf",
			TextName:     "ocr-result.txt",
			Page: PageConfig{
				Orientation: "P",
				Unit:        "mm",
				Size:        "A4",
				X:           10,
				Y:           10,
				Width:       180,
				Height:      250,
			},
		},
	}
}

// Load builds the configuration. envFile names a dotenv file; a missing
// file is ignored. path names a YAML file; empty skips it.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read env file: %w", err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values no component can use.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	if c.OCR.Language == "" {
		return fmt.Errorf("ocr.language is required")
	}

	f := c.Transform.BrightnessFactor
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return fmt.Errorf("transform.brightness_factor must be a finite non-negative number, got %v", f)
	}

	if _, err := colorful.Hex(c.Canvas.OverlayColor); err != nil {
		return fmt.Errorf("canvas.overlay_color: %w", err)
	}
	if c.Canvas.OverlayWidth <= 0 {
		return fmt.Errorf("canvas.overlay_width must be positive")
	}
	if c.Canvas.OverlayDash < 0 {
		return fmt.Errorf("canvas.overlay_dash must not be negative")
	}

	switch c.Capture.Device {
	case DeviceFile, DeviceCamera, DeviceNone:
	default:
		return fmt.Errorf("capture.device must be file, camera or none, got %q", c.Capture.Device)
	}

	if c.Export.DocumentName == "" || c.Export.TextName == "" {
		return fmt.Errorf("export file names are required")
	}

	p := c.Export.Page
	switch strings.ToUpper(p.Orientation) {
	case "P", "L":
	default:
		return fmt.Errorf("export.page.orientation must be P or L, got %q", p.Orientation)
	}
	switch p.Unit {
	case "mm", "pt", "cm", "in":
	default:
		return fmt.Errorf("export.page.unit %q is not supported", p.Unit)
	}
	switch strings.ToLower(p.Size) {
	case "a3", "a4", "a5", "letter", "legal":
	default:
		return fmt.Errorf("export.page.size %q is not supported", p.Size)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("export.page image width and height must be positive")
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SCANPAD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SCANPAD_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SCANPAD_OCR_LANGUAGE"); v != "" {
		cfg.OCR.Language = v
	}
	if v := os.Getenv("SCANPAD_TESSDATA_PREFIX"); v != "" {
		cfg.OCR.TessdataPrefix = v
	}
	if v := os.Getenv("SCANPAD_BRIGHTNESS_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SCANPAD_BRIGHTNESS_FACTOR: %w", err)
		}
		cfg.Transform.BrightnessFactor = f
	}
	if v := os.Getenv("SCANPAD_OUTPUT_DIR"); v != "" {
		cfg.Export.OutputDir = v
	}
	if v := os.Getenv("SCANPAD_CAPTURE_DEVICE"); v != "" {
		cfg.Capture.Device = v
	}
	if v := os.Getenv("SCANPAD_CAPTURE_FRAME"); v != "" {
		cfg.Capture.FramePath = v
	}
	return nil
}
