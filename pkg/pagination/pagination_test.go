package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	p := Params{}.Normalize(12)
	if p.Page != 1 {
		t.Fatalf("expected page 1, got %d", p.Page)
	}
	if p.PerPage != 12 {
		t.Fatalf("expected per_page 12, got %d", p.PerPage)
	}
}

func TestNormalizeCapsPerPage(t *testing.T) {
	p := Params{Page: 2, PerPage: 500}.Normalize(12)
	if p.PerPage != MaxPerPage {
		t.Fatalf("expected per_page capped at %d, got %d", MaxPerPage, p.PerPage)
	}
}

func TestNormalizeFallsBackToPackageDefault(t *testing.T) {
	p := Params{}.Normalize(0)
	if p.PerPage != DefaultPerPage {
		t.Fatalf("expected package default %d, got %d", DefaultPerPage, p.PerPage)
	}
}

func TestOffset(t *testing.T) {
	cases := []struct {
		page, perPage, want int
	}{
		{1, 12, 0},
		{2, 12, 12},
		{3, 10, 20},
		{0, 12, 0},
	}
	for _, tc := range cases {
		got := Params{Page: tc.page, PerPage: tc.perPage}.Offset()
		if got != tc.want {
			t.Fatalf("page %d size %d: expected offset %d got %d", tc.page, tc.perPage, tc.want, got)
		}
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage(Params{Page: 2, PerPage: 12}, 25)
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages)
	}
	if page.Total != 25 {
		t.Fatalf("expected total 25, got %d", page.Total)
	}

	empty := NewPage(Params{Page: 1, PerPage: 12}, 0)
	if empty.TotalPages != 0 {
		t.Fatalf("expected 0 total pages for empty set, got %d", empty.TotalPages)
	}
}
