package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Function names offered to the model. Exactly these two; the model may
// also answer in free text instead.
const (
	FuncLogExpense = "log_expense"
	FuncLogIncome  = "log_income"
)

type Kind int

const (
	KindNone Kind = iota
	KindExpense
	KindIncome
)

type (
	// ExpenseArgs are the decoded arguments of a log_expense call.
	ExpenseArgs struct {
		Item     string
		Amount   float64
		Category string
		Notes    string
	}

	// IncomeArgs are the decoded arguments of a log_income call.
	IncomeArgs struct {
		Source string
		Amount float64
		Notes  string
	}

	// Intent is the structured outcome of one model turn: either one of
	// the two function calls, or the model's free text.
	Intent struct {
		Kind    Kind
		Expense ExpenseArgs
		Income  IncomeArgs
		Text    string
	}
)

// Client wraps the generative-language service. Constructed once at
// startup and reused read-only across requests.
type Client struct {
	genai *genai.Client
	model string
}

func New(ctx context.Context, apiKey, model string) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{genai: cli, model: model}, nil
}

// Extract runs one model turn over the message text and returns the
// structured intent. Network and decode failures are returned as errors;
// "the model chose neither function" is not an error.
func (c *Client) Extract(ctx context.Context, text string, categories []string, payer string) (Intent, error) {
	prompt := BuildPrompt(text, categories, payer)

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: tools(),
	})
	if err != nil {
		return Intent{}, fmt.Errorf("generate content: %w", err)
	}

	return DecodeResponse(resp)
}

func tools() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        FuncLogExpense,
				Description: "Logs an expense transaction",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"item":     {Type: genai.TypeString, Description: "What the money was spent on"},
						"amount":   {Type: genai.TypeNumber},
						"category": {Type: genai.TypeString, Description: "One of the provided category names"},
						"notes":    {Type: genai.TypeString},
					},
					Required: []string{"item", "amount", "category"},
				},
			},
			{
				Name:        FuncLogIncome,
				Description: "Logs an income transaction",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"source": {Type: genai.TypeString, Description: "Where the money came from"},
						"amount": {Type: genai.TypeNumber},
						"notes":  {Type: genai.TypeString},
					},
					Required: []string{"source", "amount"},
				},
			},
		},
	}}
}

// DecodeResponse reduces a model response to an Intent. Only the first
// function call is honored when the model returns several.
func DecodeResponse(resp *genai.GenerateContentResponse) (Intent, error) {
	calls := resp.FunctionCalls()
	if len(calls) == 0 {
		return Intent{Kind: KindNone, Text: strings.TrimSpace(resp.Text())}, nil
	}
	return DecodeCall(calls[0].Name, calls[0].Args)
}

// DecodeCall validates the function-call arguments against the declared
// schema. Required fields that are absent or mistyped are an error, not
// silently trusted.
func DecodeCall(name string, args map[string]any) (Intent, error) {
	switch name {
	case FuncLogExpense:
		item, err := stringArg(args, "item")
		if err != nil {
			return Intent{}, err
		}
		amount, err := numberArg(args, "amount")
		if err != nil {
			return Intent{}, err
		}
		category, err := stringArg(args, "category")
		if err != nil {
			return Intent{}, err
		}
		return Intent{
			Kind: KindExpense,
			Expense: ExpenseArgs{
				Item:     item,
				Amount:   amount,
				Category: category,
				Notes:    optionalStringArg(args, "notes"),
			},
		}, nil

	case FuncLogIncome:
		source, err := stringArg(args, "source")
		if err != nil {
			return Intent{}, err
		}
		amount, err := numberArg(args, "amount")
		if err != nil {
			return Intent{}, err
		}
		return Intent{
			Kind: KindIncome,
			Income: IncomeArgs{
				Source: source,
				Amount: amount,
				Notes:  optionalStringArg(args, "notes"),
			},
		}, nil

	default:
		return Intent{}, fmt.Errorf("model requested unknown function %q", name)
	}
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("function call missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("function call field %q is not a usable string", key)
	}
	return strings.TrimSpace(s), nil
}

func optionalStringArg(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func numberArg(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("function call missing required field %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("function call field %q is not a number", key)
	}
}
