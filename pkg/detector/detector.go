package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"snapshop-be/internal/model"
)

// Detector is the object-detection contract. Implementations return one box
// per salient item in the photo; bbox may be normalized or pixel coords.
type Detector interface {
	Detect(ctx context.Context, imageURL string) ([]model.DetectionBox, error)
}

// HTTPDetector posts the image URL to an external detection endpoint.
type HTTPDetector struct {
	BaseURL string
	Client  *http.Client
}

var _ Detector = &HTTPDetector{}

func NewHTTPDetector(baseURL string) *HTTPDetector {
	return &HTTPDetector{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type detectRequest struct {
	ImageURL string `json:"image_url"`
}

type detectionPayload struct {
	Category string    `json:"category"`
	BBox     []float64 `json:"bbox"` // [x1, y1, x2, y2]
	Score    float64   `json:"score"`
}

type detectResponse struct {
	Detections []detectionPayload `json:"detections"`
}

func (d *HTTPDetector) Detect(ctx context.Context, imageURL string) ([]model.DetectionBox, error) {
	payload, err := json.Marshal(detectRequest{ImageURL: imageURL})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.BaseURL+"/detect", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(body),
		)
	}

	var parsed detectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	boxes := make([]model.DetectionBox, 0, len(parsed.Detections))
	for _, det := range parsed.Detections {
		box := model.DetectionBox{
			Category: det.Category,
			Score:    det.Score,
		}
		if len(det.BBox) == 4 {
			box.BBox = model.BBox{X1: det.BBox[0], Y1: det.BBox[1], X2: det.BBox[2], Y2: det.BBox[3]}
		}
		boxes = append(boxes, box)
	}

	return boxes, nil
}
