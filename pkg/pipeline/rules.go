package pipeline

import (
	"strings"

	"snapshop-be/internal/model"
)

// SubtypeRule refines a coarse bucket when the candidate carries a
// description. Keywords select the subtype; Exclusions is composed at init
// from the bucket's coarse list plus every sibling subtype's keywords, so the
// pre-rank filter and the post-rank validator always agree. Hits matching the
// subtype's own keywords are checked against the coarse list only — sibling
// keywords like "shirt" sit inside "t-shirt" and must not knock out the hits
// the subtype exists to keep.
type SubtypeRule struct {
	Name       string
	Keywords   []string
	Exclusions []string
}

// CategoryRule holds everything the filter knows about one coarse bucket.
type CategoryRule struct {
	// Exclusions drop hits that clearly belong to another bucket.
	Exclusions []string
	// Vocabulary is the positive keyword set; whole-photo hits must match it
	// before they join a candidate's pool.
	Vocabulary []string
	Subtypes   []*SubtypeRule
}

// categoryRules is the single source of truth for category filtering.
// Adding a bucket means adding a row here, not a new branch.
var categoryRules = map[model.Category]*CategoryRule{
	model.CategoryTops: {
		Exclusions: []string{
			"pants", "jeans", "skirt", "sneaker", "boots", "heel", "sandal", "loafer",
			"backpack", "handbag", "wallet", "necklace", "earring", "beanie",
			"바지", "청바지", "스커트", "치마", "운동화", "구두", "부츠", "샌들",
			"가방", "백팩", "지갑", "목걸이", "귀걸이", "모자",
		},
		Vocabulary: []string{
			"top", "shirt", "tee", "blouse", "knit", "sweater", "cardigan",
			"hoodie", "sweatshirt", "jacket", "coat", "jumper", "blazer", "vest",
			"상의", "티셔츠", "셔츠", "블라우스", "니트", "스웨터", "가디건",
			"후드", "맨투맨", "자켓", "재킷", "코트", "점퍼", "조끼",
		},
		Subtypes: []*SubtypeRule{
			{Name: "jacket/coat", Keywords: []string{"jacket", "coat", "blazer", "jumper", "padding", "parka", "자켓", "재킷", "코트", "점퍼", "패딩", "파카"}},
			{Name: "hoodie", Keywords: []string{"hoodie", "hooded", "sweatshirt", "후드", "맨투맨"}},
			{Name: "knit", Keywords: []string{"knit", "sweater", "cardigan", "니트", "스웨터", "가디건"}},
			{Name: "tshirt", Keywords: []string{"t-shirt", "tshirt", "tee", "티셔츠", "반팔"}},
			{Name: "shirt", Keywords: []string{"shirt", "blouse", "셔츠", "블라우스"}},
		},
	},
	model.CategoryBottoms: {
		Exclusions: []string{
			"blouse", "knit", "sweater", "cardigan", "hoodie", "jacket", "coat",
			"sneaker", "boots", "heel", "sandal", "backpack", "handbag",
			"상의", "티셔츠", "셔츠", "니트", "자켓", "코트", "원피스", "드레스",
			"운동화", "구두", "부츠", "샌들", "가방", "백팩",
		},
		Vocabulary: []string{
			"pants", "jeans", "denim", "skirt", "slacks", "trousers", "shorts", "leggings",
			"바지", "팬츠", "청바지", "데님", "스커트", "치마", "슬랙스", "반바지", "레깅스",
		},
		Subtypes: []*SubtypeRule{
			{Name: "jeans", Keywords: []string{"jeans", "denim", "청바지", "데님"}},
			{Name: "skirt", Keywords: []string{"skirt", "치마", "스커트"}},
			{Name: "slacks", Keywords: []string{"slacks", "trousers", "슬랙스"}},
			{Name: "shorts", Keywords: []string{"shorts", "반바지"}},
		},
	},
	model.CategoryDress: {
		Exclusions: []string{
			"pants", "jeans", "slacks", "sneaker", "boots", "backpack", "handbag", "wallet",
			"바지", "청바지", "슬랙스", "운동화", "부츠", "가방", "백팩", "지갑",
		},
		Vocabulary: []string{
			"dress", "one-piece", "onepiece", "gown", "원피스", "드레스",
		},
	},
	model.CategoryShoes: {
		Exclusions: []string{
			"shirt", "blouse", "knit", "sweater", "hoodie", "jacket", "coat",
			"pants", "jeans", "skirt", "dress", "backpack", "handbag", "wallet", "necklace",
			"티셔츠", "셔츠", "니트", "자켓", "코트", "바지", "청바지", "치마",
			"원피스", "가방", "백팩", "지갑", "모자",
		},
		Vocabulary: []string{
			"shoe", "sneaker", "trainer", "boots", "loafer", "heel", "pump",
			"sandal", "slipper", "flat", "mule",
			"신발", "운동화", "스니커즈", "부츠", "로퍼", "구두", "힐", "펌프스",
			"샌들", "슬리퍼", "플랫", "뮬",
		},
		Subtypes: []*SubtypeRule{
			{Name: "sneakers", Keywords: []string{"sneaker", "trainer", "running", "운동화", "스니커즈", "러닝화"}},
			{Name: "boots", Keywords: []string{"boot", "부츠", "워커"}},
			{Name: "heels", Keywords: []string{"heel", "pump", "stiletto", "힐", "펌프스"}},
			{Name: "sandals", Keywords: []string{"sandal", "slipper", "slide", "샌들", "슬리퍼"}},
		},
	},
	model.CategoryBag: {
		Exclusions: []string{
			"shirt", "tee", "cardigan", "knit", "sweater", "hoodie", "jacket", "coat",
			"pants", "jeans", "skirt", "dress", "sneaker", "boots", "heel", "sandal",
			"티셔츠", "셔츠", "가디건", "니트", "스웨터", "후드", "자켓", "코트",
			"바지", "청바지", "치마", "원피스", "신발", "운동화", "부츠", "힐", "샌들",
		},
		Vocabulary: []string{
			"bag", "handbag", "backpack", "tote", "crossbody", "shoulder", "clutch",
			"pouch", "wallet",
			"가방", "핸드백", "백팩", "토트", "크로스백", "숄더백", "클러치", "파우치", "지갑",
		},
	},
	model.CategoryAccessory: {
		Exclusions: []string{
			"shirt", "knit", "jacket", "coat", "pants", "jeans", "skirt", "dress",
			"sneaker", "backpack", "handbag",
			"티셔츠", "니트", "자켓", "코트", "바지", "청바지", "치마", "원피스",
			"운동화", "가방", "백팩",
		},
		Vocabulary: []string{
			"cap", "hat", "beanie", "necklace", "ring", "earring", "bracelet",
			"watch", "belt", "scarf", "muffler", "sunglasses", "glasses",
			"모자", "캡", "비니", "목걸이", "반지", "귀걸이", "팔찌", "시계",
			"벨트", "스카프", "머플러", "선글라스", "안경",
		},
		Subtypes: []*SubtypeRule{
			{Name: "cap/hat", Keywords: []string{"cap", "hat", "beanie", "모자", "캡", "비니"}},
			{Name: "jewelry", Keywords: []string{"necklace", "ring", "earring", "bracelet", "목걸이", "반지", "귀걸이", "팔찌"}},
			{Name: "watch", Keywords: []string{"watch", "시계"}},
			{Name: "belt", Keywords: []string{"belt", "벨트"}},
			{Name: "scarf", Keywords: []string{"scarf", "muffler", "스카프", "머플러"}},
		},
	},
}

func init() {
	// Compose subtype exclusion lists: coarse exclusions plus every sibling
	// subtype's keywords. Keeps the lists in one place and strictly stricter
	// than the coarse pass.
	for _, rule := range categoryRules {
		for _, sub := range rule.Subtypes {
			excl := make([]string, 0, len(rule.Exclusions))
			excl = append(excl, rule.Exclusions...)
			for _, sibling := range rule.Subtypes {
				if sibling.Name == sub.Name {
					continue
				}
				excl = append(excl, sibling.Keywords...)
			}
			sub.Exclusions = excl
		}
	}
}

// RuleFor returns the rule row for a bucket; unknown buckets fall back to
// accessory, matching the scorer's default mapping.
func RuleFor(category model.Category) *CategoryRule {
	if rule, ok := categoryRules[category]; ok {
		return rule
	}
	return categoryRules[model.CategoryAccessory]
}

// ResolveSubtype infers a finer subtype from the candidate description.
// Returns nil when no description keyword matches.
func ResolveSubtype(category model.Category, description string) *SubtypeRule {
	if description == "" {
		return nil
	}
	desc := strings.ToLower(description)
	for _, sub := range RuleFor(category).Subtypes {
		for _, kw := range sub.Keywords {
			if strings.Contains(desc, kw) {
				return sub
			}
		}
	}
	return nil
}

// ExclusionsFor returns the active exclusion list: the subtype list when a
// subtype is resolved, otherwise the bucket's coarse list.
func ExclusionsFor(category model.Category, subtype *SubtypeRule) []string {
	if subtype != nil {
		return subtype.Exclusions
	}
	return RuleFor(category).Exclusions
}

// activeExclusions picks the exclusion list for one piece of text. Text that
// positively matches the subtype's own keywords falls back to the coarse
// list: a "티셔츠" title contains the sibling term "셔츠" but is exactly what
// a tshirt search must keep.
func activeExclusions(category model.Category, subtype *SubtypeRule, lowered string) []string {
	if subtype != nil && containsAnyTerm(lowered, subtype.Keywords) {
		return RuleFor(category).Exclusions
	}
	return ExclusionsFor(category, subtype)
}

// hitExcluded reports whether the hit trips the active exclusion list for the
// bucket/subtype. Shared by FilterPool and FilterWholePool.
func hitExcluded(category model.Category, subtype *SubtypeRule, hit model.RetrievalHit) bool {
	lowered := strings.ToLower(hit.Title + " " + hit.Link)
	return containsAnyTerm(lowered, activeExclusions(category, subtype, lowered))
}

func containsAnyTerm(lowered string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// matchesAnyKeyword reports whether any term appears in the hit's title or
// link (both lowercased).
func matchesAnyKeyword(hit model.RetrievalHit, terms []string) bool {
	return containsAnyTerm(strings.ToLower(hit.Title+" "+hit.Link), terms)
}

// MatchesVocabulary reports a positive match against the bucket's vocabulary.
func MatchesVocabulary(category model.Category, hit model.RetrievalHit) bool {
	return matchesAnyKeyword(hit, RuleFor(category).Vocabulary)
}

// TitleMismatch reports whether a title carries an exclusion term for the
// bucket/subtype, with the same own-keyword precedence as the pool filter.
// Shared by the pre-rank filter and the post-rank validator.
func TitleMismatch(category model.Category, subtype *SubtypeRule, title string) bool {
	if title == "" {
		return false
	}
	lowered := strings.ToLower(title)
	return containsAnyTerm(lowered, activeExclusions(category, subtype, lowered))
}
