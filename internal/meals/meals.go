// Package meals asks an LLM for meal ideas from the pantry and for the
// ingredients and nutrition of a named meal.
package meals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/larder/internal/llm"
	"github.com/dukerupert/larder/internal/model"
)

const suggestSystem = "You are a helpful assistant that suggests meals based on pantry items. " +
	"Return ONLY a JSON array of strings, where each string is a meal suggestion. " +
	`For example: ["Spaghetti with meatballs using ground beef, pasta, tomato sauce", "Chicken stir-fry using chicken breast, soy sauce, broccoli"]. ` +
	"Do not include any other text or explanation outside of this JSON array."

const suggestPrompt = "Given these pantry items: %s, suggest 3-5 simple meals that can be made. " +
	"For each meal, briefly list the key pantry items used from the provided list. " +
	"Return ONLY a JSON array of strings, where each string is a meal suggestion. " +
	"Do not include any other text or explanation outside of this JSON array."

const detailsPrompt = `For the meal %[1]q, provide a typical list of ingredients and estimated nutritional information (calories, protein, carbohydrates, fat).
Return the information as a single well-formed JSON object with the following exact structure:
{
  "mealName": "Name of the Meal (e.g., %[1]s)",
  "ingredients": ["ingredient1", "ingredient2", ...],
  "nutrients": {
    "calories": "X kcal",
    "protein": "Yg",
    "carbohydrates": "Zg",
    "fat": "Wg"
  }
}
If you cannot find information for %[1]q or it's not a valid meal, return a JSON object like this:
{
  "error": "Meal not found or invalid"
}
Ensure the entire output is only the JSON object, with no surrounding text or explanations.`

type Service struct {
	gen      llm.TextGenerator
	validate *validator.Validate
	logger   *slog.Logger
}

func NewService(gen llm.TextGenerator, validate *validator.Validate, logger *slog.Logger) *Service {
	return &Service{gen: gen, validate: validate, logger: logger.With("component", "meals")}
}

// Suggest returns 3-5 meal ideas that use the given pantry items.
func (s *Service) Suggest(ctx context.Context, itemNames []string) ([]string, error) {
	out, err := s.gen.GenerateContent(ctx, llm.Prompt{
		System:      suggestSystem,
		User:        fmt.Sprintf(suggestPrompt, strings.Join(itemNames, ", ")),
		Temperature: 0.7,
	})
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			s.logger.Error("meal suggestion request failed", "items", len(itemNames), "error", err)
		}
		return nil, fmt.Errorf("suggest meals: %w", err)
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(stripFences(out)), &suggestions); err != nil {
		s.logger.Error("meal suggestions are not a JSON array of strings", "content", out, "error", err)
		return nil, fmt.Errorf("parse meal suggestions: %w", err)
	}
	return suggestions, nil
}

// Status tags the outcome of a meal details lookup.
type Status string

const (
	StatusOK            Status = "OK"
	StatusNotFound      Status = "NotFound"
	StatusParseError    Status = "ParseError"
	StatusUpstreamError Status = "UpstreamError"
	StatusConfigError   Status = "ConfigError"
)

// DetailsResult is either validated meal details or a tagged failure.
type DetailsResult struct {
	Status   Status
	MealName string
	Details  *model.MealDetails
	Message  string
}

type errorPayload struct {
	Error       string   `json:"error"`
	MealName    string   `json:"mealName"`
	Ingredients []string `json:"ingredients"`
}

// Payload is the JSON body for the result. Failures always render as
// {error, mealName, ingredients: []}.
func (r DetailsResult) Payload() any {
	if r.Status == StatusOK {
		return r.Details
	}
	return errorPayload{Error: r.Message, MealName: r.MealName, Ingredients: []string{}}
}

func (r DetailsResult) HTTPStatus() int {
	switch r.Status {
	case StatusOK:
		return http.StatusOK
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConfigError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// Details looks up a meal's ingredients and nutrients. It never returns an
// error; failures are reported through the result's Status.
func (s *Service) Details(ctx context.Context, mealName string) DetailsResult {
	mealName = strings.ToLower(strings.TrimSpace(mealName))
	log := s.logger.With("meal", mealName)

	out, err := s.gen.GenerateContent(ctx, llm.Prompt{
		User: fmt.Sprintf(detailsPrompt, mealName),
		JSON: true,
	})
	if errors.Is(err, llm.ErrNotConfigured) {
		log.Error("meal details requested but LLM is not configured")
		return DetailsResult{Status: StatusConfigError, MealName: mealName, Message: "LLM service is not configured."}
	}
	if err != nil {
		log.Error("meal details request failed", "error", err)
		return DetailsResult{Status: StatusUpstreamError, MealName: mealName, Message: "Failed to fetch meal details from LLM service."}
	}

	content := []byte(stripFences(out))

	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(content, &probe); err == nil && probe.Error != "" {
		log.Warn("meal not found by LLM", "reason", probe.Error)
		return DetailsResult{Status: StatusNotFound, MealName: mealName, Message: fmt.Sprintf("Details for '%s' not found", mealName)}
	}

	details, err := s.parseDetails(content)
	if err != nil {
		log.Error("meal details do not match schema", "content", out, "error", err)
		return DetailsResult{Status: StatusParseError, MealName: mealName, Message: "LLM returned malformed meal details."}
	}
	return DetailsResult{Status: StatusOK, MealName: mealName, Details: details}
}

func (s *Service) parseDetails(content []byte) (*model.MealDetails, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()

	var details model.MealDetails
	if err := dec.Decode(&details); err != nil {
		return nil, fmt.Errorf("decode meal details: %w", err)
	}
	if err := s.validate.Struct(details); err != nil {
		return nil, fmt.Errorf("validate meal details: %w", err)
	}
	return &details, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// add even when told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
