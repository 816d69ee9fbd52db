package validation

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidatorCollectsAll(t *testing.T) {
	err := NewConfigValidator("viewport").
		RangeFloat("min_scale", 0.5, 0.1, 1).
		Less("scale", 2.0, 0.5).
		PositiveFloat("fit_zoom_out", 0).
		RangeDuration("clamp_duration", time.Second, 0, 500*time.Millisecond).
		Validate()

	if err == nil {
		t.Fatal("expected errors")
	}
	msg := err.Error()
	for _, want := range []string{"viewport.scale", "viewport.fit_zoom_out", "viewport.clamp_duration"} {
		if !strings.Contains(msg, want) {
			t.Errorf("missing %q in %q", want, msg)
		}
	}
	if strings.Contains(msg, "min_scale") {
		t.Errorf("in-range field reported: %q", msg)
	}
}

func TestConfigValidatorOneOfAndWhen(t *testing.T) {
	cv := NewConfigValidator("data").
		OneOf("source", "ftp", []string{"dir", "http", "s3"}).
		When(false, func(cv *ConfigValidator) { cv.Required("bucket", "") })

	if len(cv.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %v", cv.Errors())
	}

	cv.When(true, func(cv *ConfigValidator) { cv.Required("bucket", "") })
	if len(cv.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %v", cv.Errors())
	}
}

func TestHexColor(t *testing.T) {
	if NewConfigValidator("encoding").HexColor("default_color", "#186170").HasErrors() {
		t.Error("valid color rejected")
	}
	if !NewConfigValidator("encoding").HexColor("default_color", "teal").HasErrors() {
		t.Error("invalid color accepted")
	}
}

type sample struct {
	Columns []string   `validate:"required,min=1,unique"`
	Rows    [][]string `validate:"required,dive,len=3"`
}

func TestStruct(t *testing.T) {
	if err := Struct(&sample{Columns: []string{"a"}, Rows: [][]string{{"x", "y", "z"}}}); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}

	err := Struct(&sample{Columns: []string{"a", "a"}, Rows: [][]string{{"x", "y", "z"}}})
	if err == nil || !strings.Contains(err.Error(), "unique") {
		t.Errorf("expected unique error, got %v", err)
	}

	err = Struct(&sample{Columns: []string{"a"}, Rows: [][]string{{"x"}}})
	if err == nil || !strings.Contains(err.Error(), "exactly 3") {
		t.Errorf("expected len error, got %v", err)
	}

	if err := Struct(nil); err == nil {
		t.Error("nil should be rejected")
	}
}
