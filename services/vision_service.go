package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/greenloophq/greenloop/config"
)

// VerificationResult is the classifier's estimate for a report photo.
// It is stored verbatim on the report as an opaque payload.
type VerificationResult struct {
	WasteType  string  `json:"waste_type"`
	Quantity   string  `json:"quantity"`
	Confidence float64 `json:"confidence"`
}

// WasteVerifier is the external image-classification collaborator.
type WasteVerifier interface {
	Classify(image []byte, prompt string) (*VerificationResult, error)
}

type visionService struct {
	Config *config.Config
	client *http.Client
}

func NewVisionService(conf *config.Config) WasteVerifier {
	return &visionService{
		Config: conf,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type classifyRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

// Classify sends the image to the vision service. No retry or backoff:
// a failed classification leaves the report unverified, it does not
// block submission.
func (v *visionService) Classify(image []byte, prompt string) (*VerificationResult, error) {
	if v.Config.VisionServiceURL == "" {
		return nil, fmt.Errorf("vision service url not configured")
	}

	payload, err := json.Marshal(classifyRequest{
		Image:  base64.StdEncoding.EncodeToString(image),
		Prompt: prompt,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Config.VisionServiceURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if v.Config.VisionServiceKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.Config.VisionServiceKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision service returned status %d", resp.StatusCode)
	}

	var result VerificationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding vision response: %w", err)
	}
	return &result, nil
}
