package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestExcerptShortTextUntouched(t *testing.T) {
	text := "Clases de guitarra a domicilio"
	if got := Excerpt(text); got != text {
		t.Fatalf("short text must pass through, got %q", got)
	}
}

func TestExcerptTruncatesLongText(t *testing.T) {
	text := strings.Repeat("a", 300)
	got := Excerpt(text)
	if len([]rune(got)) != ExcerptLength+3 {
		t.Fatalf("unexpected excerpt length %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
}

func TestExcerptCountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("ñ", ExcerptLength)
	if got := Excerpt(text); got != text {
		t.Fatalf("%d-rune text must not be truncated", ExcerptLength)
	}
}

func TestIsRecent(t *testing.T) {
	now := time.Now().UTC()
	if !IsRecent(now.Add(-6*24*time.Hour), now) {
		t.Fatal("six days old should be recent")
	}
	if IsRecent(now.Add(-8*24*time.Hour), now) {
		t.Fatal("eight days old should not be recent")
	}
}

func TestUcfirst(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"diseño web", "Diseño web"},
		{"Ya mayus", "Ya mayus"},
		{"ñoño", "Ñoño"},
		{"123 numeric", "123 numeric"},
	}
	for _, tc := range cases {
		if got := ucfirst(tc.in); got != tc.want {
			t.Fatalf("ucfirst(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeOptionalText(t *testing.T) {
	empty := "   "
	if got := normalizeOptionalText(&empty); got != nil {
		t.Fatalf("whitespace should normalize to nil, got %q", *got)
	}

	value := "  madrid centro "
	got := normalizeOptionalText(&value)
	if got == nil || *got != "Madrid centro" {
		t.Fatalf("unexpected normalization result %v", got)
	}

	if normalizeOptionalText(nil) != nil {
		t.Fatal("nil input must stay nil")
	}
}

func TestListingRecordToDTO(t *testing.T) {
	now := time.Now().UTC()
	image := "services/abc.jpg"
	record := listingRecord{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       "Reparación de bicicletas",
		Description: strings.Repeat("detalle ", 40),
		Category:    "Otros",
		Price:       decimal.RequireFromString("45.50"),
		ImagePath:   &image,
		CreatedAt:   now.Add(-time.Hour),
		UpdatedAt:   now,
		OwnerName:   "Carlos",
	}

	dto := record.toDTO(now, func(p string) string { return "/uploads/" + p })

	if dto.OwnerName != "Carlos" {
		t.Fatalf("unexpected owner %q", dto.OwnerName)
	}
	if !dto.HasImage || dto.ImageURL == nil || *dto.ImageURL != "/uploads/services/abc.jpg" {
		t.Fatalf("image not resolved: %+v", dto)
	}
	if !dto.IsRecent {
		t.Fatal("hour-old listing should be recent")
	}
	if !strings.HasSuffix(dto.Excerpt, "...") {
		t.Fatalf("expected truncated excerpt, got %q", dto.Excerpt)
	}
}

func TestListingRecordToDTOWithoutImage(t *testing.T) {
	record := listingRecord{
		ID:        uuid.New(),
		Title:     "Sin imagen",
		Category:  "Otros",
		Price:     decimal.RequireFromString("10.00"),
		CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
	}

	dto := record.toDTO(time.Now(), func(p string) string { return "/uploads/" + p })
	if dto.HasImage || dto.ImageURL != nil {
		t.Fatal("missing image must not resolve a url")
	}
	if dto.IsRecent {
		t.Fatal("month-old listing is not recent")
	}
}

func TestParseListSort(t *testing.T) {
	cases := map[string]ListSort{
		"":           SortLatest,
		"latest":     SortLatest,
		"oldest":     SortOldest,
		"price_low":  SortPriceLow,
		"PRICE_HIGH": SortPriceHigh,
		"bogus":      SortLatest,
	}
	for in, want := range cases {
		if got := ParseListSort(in); got != want {
			t.Fatalf("ParseListSort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOrderClauseCarriesTieBreak(t *testing.T) {
	for _, sort := range []ListSort{SortLatest, SortOldest, SortPriceLow, SortPriceHigh} {
		clause := sort.orderClause()
		if !strings.Contains(clause, "s.id DESC") {
			t.Fatalf("sort %q lacks id tie-break: %q", sort, clause)
		}
	}
}

func TestValidatePrice(t *testing.T) {
	cases := []struct {
		value   string
		wantErr bool
	}{
		{"0.01", false},
		{"999999.99", false},
		{"0.00", true},
		{"1000000.00", true},
		{"10.999", true},
		{"10.99", false},
	}
	for _, tc := range cases {
		err := validatePrice(decimal.RequireFromString(tc.value))
		if tc.wantErr && err == nil {
			t.Fatalf("expected error for %s", tc.value)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("unexpected error for %s: %v", tc.value, err)
		}
	}
}
