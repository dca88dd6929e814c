package pipeline

import (
	"testing"

	"snapshop-be/internal/model"
)

func TestFilterPoolCoarse(t *testing.T) {
	pool := []model.RetrievalHit{
		hit("https://shop.example/1", "Leather Tote Bag"),
		hit("https://shop.example/2", "Wool Cardigan Oatmeal"), // another bucket's garment
		hit("https://shop.example/3", "미니 크로스백 블랙"),
		hit("https://shop.example/4", "운동화 화이트"), // shoes term, excluded from bag
	}

	got := FilterPool(pool, model.CategoryBag, nil)
	if len(got) != 2 {
		t.Fatalf("got %d hits, want 2: %+v", len(got), got)
	}
	if got[0].Link != "https://shop.example/1" || got[1].Link != "https://shop.example/3" {
		t.Errorf("wrong hits kept: %s, %s", got[0].Link, got[1].Link)
	}
}

func TestFilterPoolSubtype(t *testing.T) {
	sneakers := ResolveSubtype(model.CategoryShoes, "grey sneaker")
	if sneakers == nil {
		t.Fatal("expected sneakers subtype")
	}

	pool := []model.RetrievalHit{
		hit("https://shop.example/s1", "New Balance 993 Grey Sneaker"),
		hit("https://shop.example/s2", "뉴발란스 993 스니커즈"),
		hit("https://shop.example/s3", "Chunky Trainer White"),
		hit("https://shop.example/s4", "러닝화 블랙"),
		hit("https://shop.example/s5", "993 Grey"), // no keyword either way, kept
		hit("https://shop.example/s6", "Retro Runner Low"),
		hit("https://shop.example/x1", "Strap Sandal Beige"),   // sibling subtype
		hit("https://shop.example/x2", "앵클 부츠 블랙"),            // sibling subtype
		hit("https://shop.example/x3", "Stiletto Heel Black"),  // sibling subtype
		hit("https://shop.example/x4", "Oversized Shirt Blue"), // coarse exclusion
	}

	got := FilterPool(pool, model.CategoryShoes, sneakers)
	if len(got) != 6 {
		t.Fatalf("got %d hits, want 6: %+v", len(got), links(got))
	}
	for _, h := range got {
		if h.Link[len(h.Link)-2] == 'x' {
			t.Errorf("excluded hit survived: %s", h.Link)
		}
	}
}

func TestFilterPoolSubtypeRetainsOwnKind(t *testing.T) {
	// Sibling keywords can sit inside a subtype's own vocabulary ("shirt"
	// inside "t-shirt", "셔츠" inside "티셔츠"); hits of the searched kind
	// must survive anyway.
	tshirt := ResolveSubtype(model.CategoryTops, "graphic t-shirt")
	if tshirt == nil {
		t.Fatal("expected tshirt subtype")
	}

	pool := []model.RetrievalHit{
		hit("https://shop.example/t1", "Basic Cotton T-Shirt"),
		hit("https://shop.example/t2", "스트라이프 티셔츠"),
		hit("https://shop.example/x1", "Oxford Shirt Blue"), // sibling subtype
	}
	got := FilterPool(pool, model.CategoryTops, tshirt)
	if len(got) != 2 {
		t.Fatalf("got %d hits, want 2: %+v", len(got), links(got))
	}
	if got[0].Link != "https://shop.example/t1" || got[1].Link != "https://shop.example/t2" {
		t.Errorf("t-shirt hits not retained: %+v", links(got))
	}

	hoodie := ResolveSubtype(model.CategoryTops, "oversized hoodie")
	if hoodie == nil {
		t.Fatal("expected hoodie subtype")
	}

	pool = []model.RetrievalHit{
		hit("https://shop.example/h1", "Oversized Hooded Sweatshirt"),
		hit("https://shop.example/h2", "기모 맨투맨 그레이"),
		hit("https://shop.example/x2", "캐시미어 니트"), // sibling subtype
	}
	got = FilterPool(pool, model.CategoryTops, hoodie)
	if len(got) != 2 {
		t.Fatalf("got %d hits, want 2: %+v", len(got), links(got))
	}
	if got[0].Link != "https://shop.example/h1" || got[1].Link != "https://shop.example/h2" {
		t.Errorf("hoodie hits not retained: %+v", links(got))
	}
}

func TestFilterWholePoolRequiresVocabulary(t *testing.T) {
	pool := []model.RetrievalHit{
		hit("https://shop.example/w1", "캐시미어 니트 그레이"),
		hit("https://shop.example/w2", "New Balance 993"),   // no tops vocabulary
		hit("https://shop.example/w3", "Denim Pants Jacket"), // vocabulary but excluded
	}

	got := FilterWholePool(pool, model.CategoryTops, nil)
	if len(got) != 1 || got[0].Link != "https://shop.example/w1" {
		t.Fatalf("want only the knit hit, got %+v", links(got))
	}
}

func TestBuildMergedPool(t *testing.T) {
	cropped := []model.RetrievalHit{
		hit("https://shop.example/c1", "A"),
		hit("https://shop.example/c2", "B"),
	}
	whole := []model.RetrievalHit{
		hit("https://shop.example/c2", "B whole"), // duplicate link
		hit("https://shop.example/w1", "C"),
	}

	got := BuildMergedPool(cropped, whole, 30)
	if len(got) != 3 {
		t.Fatalf("got %d hits, want 3", len(got))
	}
	// Cropped hits first, duplicate collapsed into its first-seen slot.
	want := []string{"https://shop.example/c1", "https://shop.example/c2", "https://shop.example/w1"}
	for i, link := range want {
		if got[i].Link != link {
			t.Errorf("pos %d = %s, want %s", i, got[i].Link, link)
		}
	}

	capped := BuildMergedPool(cropped, whole, 2)
	if len(capped) != 2 {
		t.Errorf("got %d hits, want cap of 2", len(capped))
	}
}
