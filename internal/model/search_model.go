package model

// Category is the coarse garment bucket the pipeline operates on.
type Category string

const (
	CategoryTops      Category = "tops"
	CategoryBottoms   Category = "bottoms"
	CategoryDress     Category = "dress"
	CategoryShoes     Category = "shoes"
	CategoryBag       Category = "bag"
	CategoryAccessory Category = "accessory"
)

// HitSource records which image produced a retrieval hit.
type HitSource string

const (
	HitSourceFull    HitSource = "full"
	HitSourceCropped HitSource = "cropped"
)

// Provenance records which strategy produced an item's final result.
type Provenance string

const (
	ProvenanceLLM      Provenance = "llm"
	ProvenanceFallback Provenance = "fallback"
	ProvenanceNone     Provenance = "none"
	ProvenanceError    Provenance = "error"
	ProvenanceTimeout  Provenance = "timeout"
)

// BBox is a bounding box. Values are either normalized [0,1] or absolute
// pixels; Normalized() resolves the convention.
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// IsNormalized reports whether all coordinates fit the [0,1] convention.
func (b BBox) IsNormalized() bool {
	return b.X1 <= 1 && b.Y1 <= 1 && b.X2 <= 1 && b.Y2 <= 1
}

// Normalized converts the box to normalized image space given the image size.
// Already-normalized boxes are returned unchanged.
func (b BBox) Normalized(imageWidth, imageHeight float64) BBox {
	if b.IsNormalized() || imageWidth <= 0 || imageHeight <= 0 {
		return b
	}
	return BBox{
		X1: b.X1 / imageWidth,
		Y1: b.Y1 / imageHeight,
		X2: b.X2 / imageWidth,
		Y2: b.Y2 / imageHeight,
	}
}

// Valid reports whether the box has positive area.
func (b BBox) Valid() bool {
	return b.X2 > b.X1 && b.Y2 > b.Y1
}

// Area returns the box area in normalized units.
func (b BBox) Area() float64 {
	if !b.Valid() {
		return 0
	}
	return (b.X2 - b.X1) * (b.Y2 - b.Y1)
}

// Center returns the box center.
func (b BBox) Center() (x, y float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// DetectionBox is raw object-detector output, consumed once by the scorer.
type DetectionBox struct {
	Category string  `json:"category"`
	BBox     BBox    `json:"bbox"`
	Score    float64 `json:"score"`
}

// Candidate is the unit the rest of the pipeline operates on. Immutable once
// scored; at most one per detected physical item.
type Candidate struct {
	ItemKey          string   `json:"item_key"`
	BBox             BBox     `json:"bbox"`
	RawCategory      string   `json:"raw_category"`
	MappedCategory   Category `json:"mapped_category"`
	Confidence       float64  `json:"confidence"`
	MainSubjectScore float64  `json:"main_subject_score"`
	Description      string   `json:"description,omitempty"`
	CroppedImageURL  string   `json:"cropped_image_url,omitempty"`
}

// RetrievalHit is a single externally-returned search result, unique by Link
// within a pool.
type RetrievalHit struct {
	Link      string    `json:"link"`
	Title     string    `json:"title"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Snippet   string    `json:"snippet,omitempty"`
	Source    HitSource `json:"source"`
}

// RankedProduct is the externally visible unit.
type RankedProduct struct {
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Title     string `json:"title"`
}

// ItemTiming holds per-item stage durations in milliseconds.
type ItemTiming struct {
	RetrievalMs int64 `json:"retrieval_ms"`
	RankMs      int64 `json:"rank_ms"`
}

// ItemResult is one candidate's resolved products plus provenance.
type ItemResult struct {
	ItemKey    string          `json:"item_key"`
	Products   []RankedProduct `json:"products"`
	Provenance Provenance      `json:"provenance"`
	Timing     ItemTiming      `json:"timing"`
}

// SourceCounts aggregates provenance across one request.
type SourceCounts struct {
	LLM      int `json:"llm"`
	Fallback int `json:"fallback"`
	None     int `json:"none"`
	Error    int `json:"error"`
	Timeout  int `json:"timeout"`
}

// Add increments the counter for the given provenance.
func (s *SourceCounts) Add(p Provenance) {
	switch p {
	case ProvenanceLLM:
		s.LLM++
	case ProvenanceFallback:
		s.Fallback++
	case ProvenanceNone:
		s.None++
	case ProvenanceError:
		s.Error++
	case ProvenanceTimeout:
		s.Timeout++
	}
}

// SearchResult is the terminal output of one pipeline run.
type SearchResult struct {
	Items        map[string]ItemResult `json:"items"`
	SourceCounts SourceCounts          `json:"source_counts"`
	TotalMs      int64                 `json:"total_ms"`
}
