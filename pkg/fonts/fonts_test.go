package fonts

import "testing"

func TestMeasure(t *testing.T) {
	face, err := Face(DefaultSize)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	defer face.Close()

	w0, h := Measure(face, "")
	if w0 != 0 {
		t.Errorf("empty width = %v, want 0", w0)
	}
	if h <= 0 || h > 2*DefaultSize {
		t.Errorf("line height = %v, want within (0, %v]", h, 2*DefaultSize)
	}

	short, _ := Measure(face, "bob")
	long, _ := Measure(face, "bobby-tables")
	if short <= 0 || long <= short {
		t.Errorf("widths short=%v long=%v should grow with text", short, long)
	}
}

func TestRegularTTFBase64(t *testing.T) {
	if len(RegularTTF()) == 0 {
		t.Fatal("font data is empty")
	}
	if RegularTTFBase64() == "" || RegularTTFBase64() != RegularTTFBase64() {
		t.Error("base64 encoding should be stable and non-empty")
	}
}
