package ai

import (
	"booking-finance/internal/core"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// DefaultModel is used when OPENAI_MODEL is not set.
const DefaultModel = string(shared.ChatModelGPT4o)

// BookingExtractor turns a salesperson's free-text deal note into a booking draft.
type BookingExtractor interface {
	ExtractBooking(ctx context.Context, text string, companyName string) (*core.DraftResponse, error)
}

type Agent struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

func NewAgent(apiKey, model string) *Agent {
	if model == "" {
		model = DefaultModel
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client, model: model, now: time.Now}
}

func (a *Agent) ExtractBooking(ctx context.Context, text string, companyName string) (*core.DraftResponse, error) {
	prompt := buildPrompt(text, companyName, a.now())

	schemaMap, err := schemaAsMap()
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(a.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "booking_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A real-estate unit booking with its price breakup and payment schedule"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}
	return parseDraftResponse(resp.OutputText())
}

func buildPrompt(text, companyName string, today time.Time) string {
	return fmt.Sprintf(`You are the booking desk assistant of %s, a real-estate developer in India.
Your goal is to read a salesperson's note about a closed deal and fill in the booking form.
Rules:
1. Amounts are plain decimal strings in rupees without commas or symbols ("7500000.00").
   Convert lakh and crore figures (1 lakh = 100000, 1 crore = 10000000).
2. GST rates are percentages ("5", "18"). Use "0" for any charge or rate not mentioned.
3. Never compute GST amounts, totals or net revenue yourself; only report the inputs.
4. Money already received is "paid"; future instalments are "unpaid".
5. Put the cheque number or the UTR/transaction number in "reference"; leave it empty for cash.
6. Dates are YYYY-MM-DD. Today is %s.
7. If the buyer, the unit or the base sale price is missing, ask for clarification instead.

Note: %s`, companyName, today.Format("2006-01-02"), text)
}

func parseDraftResponse(content string) (*core.DraftResponse, error) {
	if content == "" {
		return nil, errors.New("empty response content")
	}

	var out core.DraftResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if out.IsClarificationRequest {
		if out.Clarification == nil || out.Clarification.Message == "" {
			return nil, errors.New("clarification requested without a message")
		}
		out.Draft = nil
		return &out, nil
	}

	if out.Draft == nil {
		return nil, errors.New("response carries neither a draft nor a clarification")
	}
	out.Draft.Normalize()
	if err := out.Draft.Validate(); err != nil {
		return nil, fmt.Errorf("draft validation failed: %w", err)
	}
	return &out, nil
}

func schemaAsMap() (map[string]any, error) {
	schemaJSON, err := json.Marshal(generateSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}

func generateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.DraftResponse
	return reflector.Reflect(v)
}
