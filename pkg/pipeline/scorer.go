package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"snapshop-be/internal/model"
)

const (
	confidenceThreshold  = 0.45
	mainSubjectThreshold = 0.35
	maxCandidates        = 8

	weightConfidence = 0.4
	weightCentrality = 0.35
	weightSize       = 0.25
)

// hardExcludedCategories are detector labels that are practically never the
// intended subject (legwear layers under the actual garment).
var hardExcludedCategories = []string{
	"sock", "stocking", "tights", "hosiery", "양말", "스타킹",
}

// rawCategoryMapping maps detector labels to coarse buckets. Scanned in
// order; first containing match wins. Unmapped labels become accessory.
var rawCategoryMapping = []struct {
	Keyword string
	Bucket  model.Category
}{
	{"t-shirt", model.CategoryTops},
	{"tshirt", model.CategoryTops},
	{"sweatshirt", model.CategoryTops},
	{"shirt", model.CategoryTops},
	{"blouse", model.CategoryTops},
	{"sweater", model.CategoryTops},
	{"knit", model.CategoryTops},
	{"cardigan", model.CategoryTops},
	{"hoodie", model.CategoryTops},
	{"jacket", model.CategoryTops},
	{"coat", model.CategoryTops},
	{"blazer", model.CategoryTops},
	{"jumper", model.CategoryTops},
	{"vest", model.CategoryTops},
	{"outer", model.CategoryTops},
	{"top", model.CategoryTops},
	{"jeans", model.CategoryBottoms},
	{"pants", model.CategoryBottoms},
	{"trousers", model.CategoryBottoms},
	{"skirt", model.CategoryBottoms},
	{"shorts", model.CategoryBottoms},
	{"leggings", model.CategoryBottoms},
	{"jumpsuit", model.CategoryDress},
	{"dress", model.CategoryDress},
	{"one-piece", model.CategoryDress},
	{"sneaker", model.CategoryShoes},
	{"boot", model.CategoryShoes},
	{"heel", model.CategoryShoes},
	{"sandal", model.CategoryShoes},
	{"loafer", model.CategoryShoes},
	{"footwear", model.CategoryShoes},
	{"shoe", model.CategoryShoes},
	{"backpack", model.CategoryBag},
	{"handbag", model.CategoryBag},
	{"wallet", model.CategoryBag},
	{"suitcase", model.CategoryBag},
	{"bag", model.CategoryBag},
}

// MapRawCategory maps a free-text detector label to a coarse bucket.
func MapRawCategory(raw string) model.Category {
	lowered := strings.ToLower(raw)
	for _, entry := range rawCategoryMapping {
		if strings.Contains(lowered, entry.Keyword) {
			return entry.Bucket
		}
	}
	return model.CategoryAccessory
}

// MainSubjectScore combines confidence, centrality and size. The bbox must
// already be normalized; a malformed bbox degrades to the confidence term
// alone.
func MainSubjectScore(confidence float64, bbox model.BBox) float64 {
	if !bbox.Valid() {
		return confidence * weightConfidence
	}
	cx, cy := bbox.Center()
	distance := math.Hypot(cx-0.5, cy-0.5)
	centrality := math.Max(0, 1-2*distance)
	size := math.Min(1, bbox.Area()*10)
	return confidence*weightConfidence + centrality*weightCentrality + size*weightSize
}

// ScoreDetections converts raw detector boxes into scored, bucketed
// candidates: threshold, score, threshold again, sort, cap at 8, map to
// buckets. An empty result is a first-class outcome (the caller switches to
// manual selection or the fallback path), never an error.
func ScoreDetections(boxes []model.DetectionBox, imageWidth, imageHeight float64) []model.Candidate {
	type scored struct {
		box   model.DetectionBox
		norm  model.BBox
		score float64
	}

	kept := make([]scored, 0, len(boxes))
	for _, box := range boxes {
		if box.Score < confidenceThreshold {
			continue
		}
		if isHardExcluded(box.Category) {
			continue
		}
		norm := box.BBox.Normalized(imageWidth, imageHeight)
		score := MainSubjectScore(box.Score, norm)
		if score < mainSubjectThreshold {
			continue
		}
		kept = append(kept, scored{box: box, norm: norm, score: score})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})
	if len(kept) > maxCandidates {
		kept = kept[:maxCandidates]
	}

	counts := make(map[model.Category]int)
	candidates := make([]model.Candidate, 0, len(kept))
	for _, s := range kept {
		bucket := MapRawCategory(s.box.Category)
		counts[bucket]++
		candidates = append(candidates, model.Candidate{
			ItemKey:          fmt.Sprintf("%s_%d", bucket, counts[bucket]),
			BBox:             s.box.BBox,
			RawCategory:      s.box.Category,
			MappedCategory:   bucket,
			Confidence:       s.box.Score,
			MainSubjectScore: s.score,
		})
	}

	return candidates
}

func isHardExcluded(rawCategory string) bool {
	lowered := strings.ToLower(rawCategory)
	for _, term := range hardExcludedCategories {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
