package dto

import (
	"snapshop-be/internal/model"
)

// SearchCandidateDTO is one user-confirmed (or manually drawn) item.
type SearchCandidateDTO struct {
	ItemKey         string `json:"item_key" validate:"required"`
	MappedCategory  string `json:"mapped_category" validate:"required,oneof=tops bottoms dress shoes bag accessory"`
	CroppedImageURL string `json:"cropped_image_url,omitempty" validate:"omitempty,url"`
	Description     string `json:"description,omitempty"`
}

type SearchRequest struct {
	OriginalImageURL string               `json:"original_image_url" validate:"omitempty,url"`
	Candidates       []SearchCandidateDTO `json:"candidates" validate:"dive"`
}

type SearchTimingDTO struct {
	TotalMs int64                       `json:"total_ms"`
	Items   map[string]model.ItemTiming `json:"items"`
}

type SearchMetaDTO struct {
	SourceCounts model.SourceCounts `json:"source_counts"`
	Provenance   map[string]string  `json:"provenance"`
	Timing       SearchTimingDTO    `json:"timing"`
}

type SearchResponse struct {
	RequestID string                             `json:"request_id"`
	Results   map[string][]model.RankedProduct   `json:"results"`
	Meta      SearchMetaDTO                      `json:"meta"`
}

// DetectRequest exposes the candidate scorer to the crop UI.
type DetectRequest struct {
	ImageURL    string  `json:"image_url" validate:"required,url"`
	ImageWidth  float64 `json:"image_width,omitempty"`
	ImageHeight float64 `json:"image_height,omitempty"`
}

type DetectResponse struct {
	Candidates []model.Candidate `json:"candidates"`
}

// StreamMessageDTO is one websocket frame on the progress stream.
type StreamMessageDTO struct {
	Type      string      `json:"type"`
	RequestID string      `json:"request_id"`
	Data      interface{} `json:"data"`
}
