package pipeline

import (
	"reflect"
	"testing"

	"snapshop-be/internal/model"
)

func newTestValidator() *Validator {
	return NewValidator(nopLogger{})
}

func TestDomainMatching(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		link     string
		blocked  bool
		domestic bool
	}{
		{"https://www.musinsa.com/products/1001", false, true},
		{"https://kream.co.kr/products/4004", false, true},
		{"https://smartstore.naver.com/brandshop/products/55", false, true},
		{"https://blog.naver.com/reviewer/6006", true, false},
		{"https://www.pinterest.com/pin/3003", true, false},
		{"https://x.com/somepost", true, false},
		// Boundary: "x.com" must not match inside "flex.com".
		{"https://flex.com/item/1", false, false},
		// Boundary: "ssg.com" must not match "blossg.com".
		{"https://blossg.com/item/1", false, false},
		{"https://www.amazon.com/dp/B01", false, false},
	}

	for _, tt := range tests {
		if got := v.IsBlockedDomain(tt.link); got != tt.blocked {
			t.Errorf("IsBlockedDomain(%s) = %v, want %v", tt.link, got, tt.blocked)
		}
		if got := v.IsDomesticDomain(tt.link); got != tt.domestic {
			t.Errorf("IsDomesticDomain(%s) = %v, want %v", tt.link, got, tt.domestic)
		}
	}
}

func TestIsNonProductURL(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		link string
		want bool
	}{
		{"https://www.musinsa.com/products/1001", false},
		{"https://shop.example/search?keyword=coat", true},
		{"https://shop.example/list?q=coat", true},
		{"https://shop.example/category/outer", true},
		{"https://shop.example/category/outer/product/99", false},
		{"https://shop.example/products/1/reviews", true},
		{"https://shop.example/board/free/77", true},
		{"https://shop.example/event/sale", true},
		{"https://shop.example/item/1?color=navy", false},
	}

	for _, tt := range tests {
		if got := v.IsNonProductURL(tt.link); got != tt.want {
			t.Errorf("IsNonProductURL(%s) = %v, want %v", tt.link, got, tt.want)
		}
	}
}

func TestApplyQuota(t *testing.T) {
	v := newTestValidator()

	d1 := "https://www.musinsa.com/products/1"
	d2 := "https://kream.co.kr/products/2"
	d3 := "https://www.29cm.co.kr/product/3"
	d4 := "https://www.ssg.com/item/4"
	i1 := "https://www.amazon.com/dp/1"
	i2 := "https://www.farfetch.com/item/2"
	i3 := "https://www.zalando.de/item/3"
	i4 := "https://www.asos.com/item/4"

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "three or more domestic keeps first three domestic",
			in:   []string{i1, d1, d2, i2, d3, d4},
			want: []string{d1, d2, d3},
		},
		{
			name: "two domestic padded with one international",
			in:   []string{i1, d1, i2, d2, i3},
			want: []string{d1, d2, i1},
		},
		{
			name: "one domestic padded with two international",
			in:   []string{i1, i2, d1, i3, i4},
			want: []string{d1, i1, i2},
		},
		{
			name: "zero domestic keeps up to three international",
			in:   []string{i1, i2, i3, i4},
			want: []string{i1, i2, i3},
		},
		{
			name: "zero domestic short list",
			in:   []string{i1},
			want: []string{i1},
		},
		{
			name: "empty input",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.ApplyQuota("item_1", tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ApplyQuota(%v) = %v, want %v", tt.in, got, tt.want)
			}
			// Deterministic: same input, same output.
			again := v.ApplyQuota("item_1", tt.in)
			if !reflect.DeepEqual(got, again) {
				t.Errorf("quota not deterministic: %v vs %v", got, again)
			}
		})
	}
}

func TestFilterSelected(t *testing.T) {
	v := newTestValidator()
	item := &ItemContext{
		Candidate: model.Candidate{ItemKey: "bag_1", MappedCategory: model.CategoryBag},
		Merged: []model.RetrievalHit{
			hit("https://shop.example/ok", "Leather Tote Bag"),
			hit("https://shop.example/wrong", "Wool Cardigan Oatmeal"),
		},
	}

	got := v.FilterSelected(item, []string{
		"https://shop.example/ok",
		"https://shop.example/wrong",                // title fails the bag check
		"https://blog.naver.com/post/1",             // blocked domain
		"https://shop.example/search?keyword=totes", // non-product URL
	})

	want := []string{"https://shop.example/ok"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterSelected = %v, want %v", got, want)
	}
}

func TestPrependWholePhotoHits(t *testing.T) {
	v := newTestValidator()
	item := &ItemContext{
		Candidate: model.Candidate{ItemKey: "tops_1", MappedCategory: model.CategoryTops},
		WholeMatch: []model.RetrievalHit{
			hit("https://www.musinsa.com/products/10", "울 니트 그레이"),
			hit("https://shop.example/dup", "니트 베이지"),         // already in kept
			hit("https://blog.naver.com/post/9", "니트 코디 추천"), // blocked
			hit("https://shop.example/w2", "가디건 아이보리"),
		},
	}

	got := v.PrependWholePhotoHits(item, []string{"https://shop.example/dup"})
	want := []string{
		"https://www.musinsa.com/products/10",
		"https://shop.example/w2",
		"https://shop.example/dup",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PrependWholePhotoHits = %v, want %v", got, want)
	}
}

func TestPrependWholePhotoHitsCharacterItem(t *testing.T) {
	v := newTestValidator()
	item := &ItemContext{
		Candidate: model.Candidate{
			ItemKey:        "tops_1",
			MappedCategory: model.CategoryTops,
			Description:    "cartoon character print tee",
		},
		WholeMatch: []model.RetrievalHit{
			hit("https://www.musinsa.com/products/10", "그래픽 티셔츠"),
		},
	}

	kept := []string{"https://shop.example/k1"}
	got := v.PrependWholePhotoHits(item, kept)
	if !reflect.DeepEqual(got, kept) {
		t.Errorf("character item must skip the prepend, got %v", got)
	}
}

func TestPrependWholePhotoHitsCap(t *testing.T) {
	v := newTestValidator()
	item := &ItemContext{
		Candidate: model.Candidate{ItemKey: "tops_1", MappedCategory: model.CategoryTops},
		WholeMatch: []model.RetrievalHit{
			hit("https://shop.example/w1", "니트 1"),
			hit("https://shop.example/w2", "니트 2"),
			hit("https://shop.example/w3", "니트 3"),
			hit("https://shop.example/w4", "니트 4"),
			hit("https://shop.example/w5", "니트 5"),
			hit("https://shop.example/w6", "니트 6"),
		},
	}

	got := v.PrependWholePhotoHits(item, []string{"https://shop.example/k1", "https://shop.example/k2"})
	if len(got) != finalResultCap {
		t.Fatalf("got %d links, want final cap of %d", len(got), finalResultCap)
	}
	// Whole-photo hits first, then as many kept links as the cap allows.
	if got[0] != "https://shop.example/w1" || got[4] != "https://shop.example/w5" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestRawFallback(t *testing.T) {
	v := newTestValidator()
	item := &ItemContext{
		Candidate: model.Candidate{ItemKey: "shoes_1", MappedCategory: model.CategoryShoes},
		CroppedPool: []model.RetrievalHit{
			hit("https://blog.naver.com/post/1", "993 착용 후기"), // blocked
			hit("https://kream.co.kr/products/1", "993 Grey"),
			hit("https://shop.example/c2", "993 White"),
		},
		WholeMatch: []model.RetrievalHit{
			hit("https://kream.co.kr/products/1", "993 Grey"), // duplicate
			hit("https://shop.example/w1", "스니커즈 그레이"),
			hit("https://shop.example/w2", "스니커즈 블랙"),
		},
	}

	got := v.RawFallback(item)
	want := []string{
		"https://kream.co.kr/products/1",
		"https://shop.example/c2",
		"https://shop.example/w1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RawFallback = %v, want %v", got, want)
	}
}

func TestAttachMetadata(t *testing.T) {
	item := &ItemContext{
		Candidate: model.Candidate{ItemKey: "tops_1", MappedCategory: model.CategoryTops},
		Merged: []model.RetrievalHit{
			{Link: "https://shop.example/1", Title: "니트 그레이", Thumbnail: "https://img.example/1.jpg"},
		},
	}

	got := AttachMetadata(item, []string{"https://shop.example/1", "https://shop.example/unknown"})
	if len(got) != 2 {
		t.Fatalf("got %d products, want 2", len(got))
	}
	if got[0].Title != "니트 그레이" || got[0].Thumbnail != "https://img.example/1.jpg" {
		t.Errorf("metadata not resolved: %+v", got[0])
	}
	// Unknown links keep the bare link; absent metadata is not an error.
	if got[1].Link != "https://shop.example/unknown" || got[1].Title != "" {
		t.Errorf("unknown link should stay bare: %+v", got[1])
	}
}
