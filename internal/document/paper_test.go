package document

import (
	"math"
	"testing"
)

func TestPaperSet_Lookup(t *testing.T) {
	set := DefaultPapers()

	p, ok := set.Lookup("a4")
	if !ok || p == nil || p.Width != 595 || p.Height != 842 {
		t.Fatalf("Lookup(a4) = %#v, %v", p, ok)
	}
	p, ok = set.Lookup(OriginalSize)
	if !ok || p != nil {
		t.Fatalf("Lookup(Original) = %#v, %v; want nil, true", p, ok)
	}
	if _, ok := set.Lookup("Tabloid"); ok {
		t.Fatalf("Lookup(Tabloid) ok = true, want false")
	}
}

func TestPaperSet_NamesEndWithOriginal(t *testing.T) {
	names := DefaultPapers().Names()
	want := []string{"A3", "A4", "Legal", "Letter", OriginalSize}
	if len(names) != len(want) {
		t.Fatalf("Names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names = %v, want %v", names, want)
		}
	}
}

func TestPaper_Fit(t *testing.T) {
	cases := []struct {
		name   string
		iw, ih float64
		wantW  float64
		wantH  float64
	}{
		// Wider than the page: width bound.
		{"landscape image", 2000, 1000, 595 * 0.95, 595 * 0.95 / 2},
		// Taller than the page: height bound.
		{"tall image", 100, 1000, 842 * 0.95 / 10, 842 * 0.95},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, y, w, h := A4.Fit(tc.iw, tc.ih)
			if math.Abs(w-tc.wantW) > 1e-6 || math.Abs(h-tc.wantH) > 1e-6 {
				t.Fatalf("Fit size = %.3fx%.3f, want %.3fx%.3f", w, h, tc.wantW, tc.wantH)
			}
			if math.Abs(x-(A4.Width-w)/2) > 1e-6 || math.Abs(y-(A4.Height-h)/2) > 1e-6 {
				t.Fatalf("Fit origin = (%.3f,%.3f), not centred", x, y)
			}
			if w > A4.Width*0.95+1e-9 || h > A4.Height*0.95+1e-9 {
				t.Fatalf("Fit exceeds 95%% margin: %.3fx%.3f", w, h)
			}
		})
	}
}

func TestPaper_FitDegenerateImage(t *testing.T) {
	if x, y, w, h := Letter.Fit(0, 10); x != 0 || y != 0 || w != 0 || h != 0 {
		t.Fatalf("Fit(0,10) = %v %v %v %v, want zeros", x, y, w, h)
	}
}
