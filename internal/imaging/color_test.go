package imaging

import (
	"image/color"
	"testing"
)

func TestSampleColor(t *testing.T) {
	b := createSolidBuffer(t, 100, 100, color.NRGBA{255, 128, 64, 255})

	result, err := SampleColor(b, 50, 50)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}

	if result.Hex != "#FF8040" {
		t.Errorf("Hex: got %s, want #FF8040", result.Hex)
	}
	if result.RGBA != (RGBAColor{255, 128, 64, 255}) {
		t.Errorf("RGBA: got %+v", result.RGBA)
	}
}

func TestSampleColor_HSL(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want HSLColor
	}{
		{"red", color.NRGBA{255, 0, 0, 255}, HSLColor{0, 100, 50}},
		{"green", color.NRGBA{0, 255, 0, 255}, HSLColor{120, 100, 50}},
		{"black", color.NRGBA{0, 0, 0, 255}, HSLColor{0, 0, 0}},
		{"white", color.NRGBA{255, 255, 255, 255}, HSLColor{0, 0, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := createSolidBuffer(t, 1, 1, tt.c)
			result, err := SampleColor(b, 0, 0)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}
			if result.HSL != tt.want {
				t.Errorf("HSL: got %+v, want %+v", result.HSL, tt.want)
			}
		})
	}
}

func TestSampleColor_RawSamplesWithAlpha(t *testing.T) {
	b := createSolidBuffer(t, 1, 1, color.NRGBA{200, 100, 50, 10})
	result, err := SampleColor(b, 0, 0)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.RGBA != (RGBAColor{200, 100, 50, 10}) {
		t.Errorf("RGBA: got %+v, want unpremultiplied samples", result.RGBA)
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	b := createSolidBuffer(t, 10, 10, color.NRGBA{0, 0, 0, 255})

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if _, err := SampleColor(b, p[0], p[1]); err == nil {
			t.Errorf("SampleColor(%d,%d) should fail", p[0], p[1])
		}
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#00ffff", color.NRGBA{0, 255, 255, 255}},
		{"#FF8040", color.NRGBA{255, 128, 64, 255}},
		{"#fff", color.NRGBA{255, 255, 255, 255}},
	}

	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if err != nil {
			t.Fatalf("ParseHexColor(%s) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%s): got %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "cyan", "#12", "#GGGGGG"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Errorf("ParseHexColor(%q) should fail", bad)
		}
	}
}
