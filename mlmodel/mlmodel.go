package mlmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"go-hazardwatch/types"
)

// DefaultTimeout bounds a single classifier request. The classifier is the
// only materially blocking call on the intake path, so a slow service must
// not hold up report creation beyond this.
const DefaultTimeout = 15 * time.Second

// Input carries the report fields sent to the classifier. Image is nil for
// text-only requests, which use a JSON body instead of a multipart form.
type Input struct {
	Title       string
	Description string
	Type        string
	Location    string
	Pincode     string
	Image       io.Reader
	ImageName   string
}

// Classifier normalizes an external hazard-classification service.
// Classify never fails the caller: any transport or decoding problem
// degrades into an Unavailable classification.
type Classifier interface {
	Classify(ctx context.Context, input Input) *types.Classification
}

// HazardModel talks to the hazard model service's verify endpoint.
type HazardModel struct {
	url    string
	client *http.Client
}

func NewHazardModel(url string, timeout time.Duration) *HazardModel {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HazardModel{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Classify sends exactly one request to the model service; there is no
// retry or backoff. Failures are logged and returned as Unavailable.
func (m *HazardModel) Classify(ctx context.Context, input Input) *types.Classification {
	result, err := m.call(ctx, input)
	if err != nil {
		log.Printf("classifier unavailable: %v", err)
		return Unavailable()
	}
	return result
}

func (m *HazardModel) call(ctx context.Context, input Input) (*types.Classification, error) {
	var req *http.Request
	var err error
	if input.Image != nil {
		req, err = m.multipartRequest(ctx, input)
	} else {
		req, err = m.jsonRequest(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("model service returned status %s", resp.Status)
	}

	var raw rawResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}
	return raw.normalize(), nil
}

func (m *HazardModel) jsonRequest(ctx context.Context, input Input) (*http.Request, error) {
	payload := map[string]string{
		"title":       input.Title,
		"description": input.Description,
		"type":        input.Type,
		"location":    input.Location,
		"pincode":     input.Pincode,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (m *HazardModel) multipartRequest(ctx context.Context, input Input) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"title":       input.Title,
		"description": input.Description,
		"type":        input.Type,
		"location":    input.Location,
		"pincode":     input.Pincode,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, err
		}
	}

	imageName := input.ImageName
	if imageName == "" {
		imageName = "image"
	}
	part, err := writer.CreateFormFile("image", imageName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, input.Image); err != nil {
		return nil, fmt.Errorf("buffering image for model request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// Unavailable is the degraded-mode sentinel stored when the classifier
// could not be reached or returned garbage.
func Unavailable() *types.Classification {
	return &types.Classification{
		Unavailable: true,
		Error:       "unavailable",
	}
}

// rawResult tolerates the loosely typed shapes the model service has been
// seen emitting; normalization happens here at the boundary so nothing
// downstream has to trust the external schema.
type rawResult struct {
	PredictedLabel string                 `json:"predictedLabel"`
	Confidence     json.Number            `json:"confidence"`
	IsHazard       interface{}            `json:"isHazard"`
	Components     map[string]interface{} `json:"components"`
}

func (r *rawResult) normalize() *types.Classification {
	confidence, err := r.Confidence.Float64()
	if err != nil {
		confidence = 0
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &types.Classification{
		PredictedLabel: r.PredictedLabel,
		Confidence:     confidence,
		IsHazard:       coerceBool(r.IsHazard),
		Components:     r.Components,
	}
}

func coerceBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b == "true" || b == "1"
	}
	return false
}
