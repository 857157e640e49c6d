// Package gemini fetches destination data from the Gemini generative-language
// REST API as structured JSON.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Tiliavir/lumina/internal/model"
)

// ErrUnreachable wraps every transport, status, decode and schema failure.
var ErrUnreachable = errors.New("destination info unreachable")

// Fetcher returns TravelData for a location and optional coordinates.
type Fetcher interface {
	Fetch(ctx context.Context, location string, coords *model.Coords) (*model.TravelData, error)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Model   string
	// APIKey is sent as x-goog-api-key. Leave empty when HTTPClient already
	// authenticates requests (OAuth).
	APIKey     string
	HTTPClient *http.Client
}

// Client is a Gemini generateContent client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	validate   *validator.Validate
}

// NewClient creates a Client. A nil HTTPClient means http.DefaultClient.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		model:      opts.Model,
		apiKey:     opts.APIKey,
		validate:   validator.New(),
	}
}

// Prompt is the instruction sent for a location.
func Prompt(location string, coords *model.Coords) string {
	hint := "Unknown"
	if coords != nil {
		hint = fmt.Sprintf("Lat %g, Lng %g", coords.Lat, coords.Lng)
	}
	return fmt.Sprintf(`Generate comprehensive travel planning information for %q.
If possible, take into account these coordinates: %s.
Provide:
- Current/typical weather for travelers right now.
- UTC Offset (e.g., UTC+1).
- A suggested 1-day highlight itinerary (Morning, Afternoon, Evening).
- Neighborhood recommendations and hotel booking tips for this location.
- A destination-specific checklist of 5 things to do/bring.
- A destination-specific shopping list of 5 local items/souvenirs to look for.`, location, hint)
}

type schema struct {
	Type       string             `json:"type"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Items      *schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

var (
	stringSchema = &schema{Type: "STRING"}

	// travelDataSchema mirrors model.TravelData; every field is required.
	travelDataSchema = &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"weather":   stringSchema,
			"utcOffset": stringSchema,
			"itineraryTable": {
				Type: "OBJECT",
				Properties: map[string]*schema{
					"morning":   stringSchema,
					"afternoon": stringSchema,
					"evening":   stringSchema,
				},
				Required: []string{"morning", "afternoon", "evening"},
			},
			"hotelInfo":    stringSchema,
			"todoList":     {Type: "ARRAY", Items: stringSchema},
			"shoppingList": {Type: "ARRAY", Items: stringSchema},
		},
		Required: []string{"weather", "utcOffset", "itineraryTable", "hotelInfo", "todoList", "shoppingList"},
	}
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content `json:"contents"`
	GenerationConfig struct {
		ResponseMIMEType string  `json:"responseMimeType"`
		ResponseSchema   *schema `json:"responseSchema"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Fetch asks the model for TravelData. Any failure, including a response
// that does not match the TravelData shape, is reported as ErrUnreachable
// wrapping the cause.
func (c *Client) Fetch(ctx context.Context, location string, coords *model.Coords) (*model.TravelData, error) {
	var reqBody generateRequest
	reqBody.Contents = []content{{Parts: []part{{Text: Prompt(location, coords)}}}}
	reqBody.GenerationConfig.ResponseMIMEType = "application/json"
	reqBody.GenerationConfig.ResponseSchema = travelDataSchema

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %w", ErrUnreachable, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini request failed: %w", ErrUnreachable, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", ErrUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gemini API error %d: %s", ErrUnreachable, resp.StatusCode, string(body))
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("%w: decoding gemini response: %w", ErrUnreachable, err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 || gr.Candidates[0].Content.Parts[0].Text == "" {
		return nil, fmt.Errorf("%w: received empty response from the model", ErrUnreachable)
	}

	var data model.TravelData
	if err := json.Unmarshal([]byte(gr.Candidates[0].Content.Parts[0].Text), &data); err != nil {
		return nil, fmt.Errorf("%w: could not parse travel data: %w", ErrUnreachable, err)
	}
	if err := c.validate.Struct(data); err != nil {
		return nil, fmt.Errorf("%w: travel data incomplete: %w", ErrUnreachable, err)
	}
	return &data, nil
}
