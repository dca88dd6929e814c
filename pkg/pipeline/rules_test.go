package pipeline

import (
	"testing"

	"snapshop-be/internal/model"
)

func TestResolveSubtype(t *testing.T) {
	tests := []struct {
		name        string
		category    model.Category
		description string
		want        string // "" means nil
	}{
		{"no description", model.CategoryShoes, "", ""},
		{"english sneaker", model.CategoryShoes, "grey sneaker", "sneakers"},
		{"korean boots", model.CategoryShoes, "검정 워커", "boots"},
		{"hoodie", model.CategoryTops, "oversized hoodie", "hoodie"},
		{"korean knit", model.CategoryTops, "울 니트", "knit"},
		{"no keyword match", model.CategoryBottoms, "blue item", ""},
		{"jeans", model.CategoryBottoms, "wide denim", "jeans"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSubtype(tt.category, tt.description)
			if tt.want == "" {
				if got != nil {
					t.Errorf("want nil subtype, got %s", got.Name)
				}
				return
			}
			if got == nil {
				t.Fatalf("want subtype %s, got nil", tt.want)
			}
			if got.Name != tt.want {
				t.Errorf("subtype = %s, want %s", got.Name, tt.want)
			}
		})
	}
}

func TestSubtypeExclusionsIncludeSiblings(t *testing.T) {
	sub := ResolveSubtype(model.CategoryShoes, "white sneaker")
	if sub == nil {
		t.Fatal("expected sneakers subtype")
	}

	mustContain := []string{"sandal", "힐", "boot", "셔츠", "handbag"}
	for _, term := range mustContain {
		found := false
		for _, excl := range sub.Exclusions {
			if excl == term {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("sneakers exclusions missing %q", term)
		}
	}

	// The subtype's own keywords never end up in its exclusion list.
	for _, excl := range sub.Exclusions {
		if excl == "sneaker" || excl == "운동화" {
			t.Errorf("sneakers exclusions contain own keyword %q", excl)
		}
	}
}

func TestTitleMismatch(t *testing.T) {
	tests := []struct {
		name     string
		category model.Category
		title    string
		want     bool
	}{
		{"cardigan is not a bag", model.CategoryBag, "Wool Cardigan Oatmeal", true},
		{"tote is a bag", model.CategoryBag, "Leather Tote Bag", false},
		{"korean pants under tops", model.CategoryTops, "와이드 바지 블랙", true},
		{"empty title passes", model.CategoryShoes, "", false},
		{"plain shoe title", model.CategoryShoes, "New Balance 993 Grey", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleMismatch(tt.category, nil, tt.title); got != tt.want {
				t.Errorf("TitleMismatch(%s, %q) = %v, want %v", tt.category, tt.title, got, tt.want)
			}
		})
	}
}

func TestTitleMismatchWithSubtype(t *testing.T) {
	sneakers := ResolveSubtype(model.CategoryShoes, "sneaker")
	if sneakers == nil {
		t.Fatal("expected sneakers subtype")
	}
	// A sandal title passes the coarse shoes check but fails the subtype one.
	if TitleMismatch(model.CategoryShoes, nil, "Strap Sandal Beige") {
		t.Error("coarse shoes check should accept a sandal title")
	}
	if !TitleMismatch(model.CategoryShoes, sneakers, "Strap Sandal Beige") {
		t.Error("sneakers subtype check should reject a sandal title")
	}
}

func TestTitleMismatchKeepsOwnSubtype(t *testing.T) {
	tshirt := ResolveSubtype(model.CategoryTops, "graphic t-shirt")
	if tshirt == nil {
		t.Fatal("expected tshirt subtype")
	}
	// Own-kind titles pass even though they contain sibling terms as
	// substrings ("shirt", "셔츠").
	if TitleMismatch(model.CategoryTops, tshirt, "Basic Cotton T-Shirt") {
		t.Error("tshirt check rejected a t-shirt title")
	}
	if TitleMismatch(model.CategoryTops, tshirt, "스트라이프 티셔츠") {
		t.Error("tshirt check rejected a Korean t-shirt title")
	}
	// Sibling kinds still fail.
	if !TitleMismatch(model.CategoryTops, tshirt, "Oxford Shirt Blue") {
		t.Error("tshirt check accepted a plain shirt title")
	}

	hoodie := ResolveSubtype(model.CategoryTops, "oversized hoodie")
	if hoodie == nil {
		t.Fatal("expected hoodie subtype")
	}
	if TitleMismatch(model.CategoryTops, hoodie, "Oversized Hooded Sweatshirt") {
		t.Error("hoodie check rejected a sweatshirt title")
	}

	shirt := ResolveSubtype(model.CategoryTops, "striped shirt")
	if shirt == nil || shirt.Name != "shirt" {
		t.Fatalf("expected shirt subtype, got %+v", shirt)
	}
	if TitleMismatch(model.CategoryTops, shirt, "Oxford Shirt Blue") {
		t.Error("shirt check rejected a shirt title")
	}
	if !TitleMismatch(model.CategoryTops, shirt, "Striped Tee") {
		t.Error("shirt check accepted a tee title")
	}
}

func TestMatchesVocabulary(t *testing.T) {
	if !MatchesVocabulary(model.CategoryTops, hit("https://a.example/1", "캐시미어 니트 그레이")) {
		t.Error("korean knit title should match tops vocabulary")
	}
	if MatchesVocabulary(model.CategoryTops, hit("https://a.example/2", "Leather Belt Brown")) {
		t.Error("belt title should not match tops vocabulary")
	}
	// Link text participates in matching too.
	if !MatchesVocabulary(model.CategoryShoes, hit("https://shop.example/sneaker/123", "")) {
		t.Error("link containing sneaker should match shoes vocabulary")
	}
}

func TestRuleForUnknownBucket(t *testing.T) {
	if RuleFor(model.Category("hat")) != categoryRules[model.CategoryAccessory] {
		t.Error("unknown bucket should fall back to accessory rule")
	}
}
