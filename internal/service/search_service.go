package service

import (
	"context"
	"errors"

	"snapshop-be/internal/dto"
	"snapshop-be/internal/model"
	"snapshop-be/internal/pkg/logger"
	"snapshop-be/pkg/detector"
	"snapshop-be/pkg/pipeline"

	"github.com/google/uuid"
)

var ErrEmptySearchRequest = errors.New("request needs candidates or an original image url")

type ISearchService interface {
	Search(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error)
	Detect(ctx context.Context, req dto.DetectRequest) (*dto.DetectResponse, error)
}

type searchService struct {
	aggregator *pipeline.Aggregator
	detector   detector.Detector
	logger     logger.ILogger
}

func NewSearchService(
	aggregator *pipeline.Aggregator,
	det detector.Detector,
	log logger.ILogger,
) ISearchService {
	return &searchService{
		aggregator: aggregator,
		detector:   det,
		logger:     log,
	}
}

// Search runs the full pipeline for one photo. An empty candidate list with a
// present original image routes to the whole-photo fallback inside the
// aggregator, so it is not an error here.
func (ss *searchService) Search(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error) {
	if len(req.Candidates) == 0 && req.OriginalImageURL == "" {
		return nil, ErrEmptySearchRequest
	}

	requestID := uuid.New().String()
	candidates := make([]model.Candidate, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		candidates = append(candidates, model.Candidate{
			ItemKey:        c.ItemKey,
			MappedCategory: model.Category(c.MappedCategory),
			// Manually confirmed by the user, so confidence is taken as given.
			Confidence:      1.0,
			Description:     c.Description,
			CroppedImageURL: c.CroppedImageURL,
		})
	}

	ss.logger.Info("search_service", "starting search request", map[string]interface{}{
		"request_id": requestID,
		"candidates": len(candidates),
	})

	result := ss.aggregator.Run(ctx, requestID, req.OriginalImageURL, candidates)

	return ss.buildResponse(requestID, result), nil
}

// Detect runs the object detector and scorer so the client can offer crop
// suggestions. Zero candidates is a valid outcome and returns an empty list.
func (ss *searchService) Detect(ctx context.Context, req dto.DetectRequest) (*dto.DetectResponse, error) {
	boxes, err := ss.detector.Detect(ctx, req.ImageURL)
	if err != nil {
		ss.logger.Error("search_service", "object detection failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	candidates := pipeline.ScoreDetections(boxes, req.ImageWidth, req.ImageHeight)
	return &dto.DetectResponse{Candidates: candidates}, nil
}

func (ss *searchService) buildResponse(requestID string, result model.SearchResult) *dto.SearchResponse {
	results := make(map[string][]model.RankedProduct, len(result.Items))
	provenance := make(map[string]string, len(result.Items))
	timings := make(map[string]model.ItemTiming, len(result.Items))
	for key, item := range result.Items {
		results[key] = item.Products
		provenance[key] = string(item.Provenance)
		timings[key] = item.Timing
	}

	return &dto.SearchResponse{
		RequestID: requestID,
		Results:   results,
		Meta: dto.SearchMetaDTO{
			SourceCounts: result.SourceCounts,
			Provenance:   provenance,
			Timing: dto.SearchTimingDTO{
				TotalMs: result.TotalMs,
				Items:   timings,
			},
		},
	}
}
