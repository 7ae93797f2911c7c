// Package annotate is the client for the external AI-summarization
// collaborator. It receives the serialized metadata tree as opaque
// input and merges natural-language annotations back onto it; it never
// alters the core fields.
package annotate

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/output"
)

const defaultModel = openai.GPT4oMini

// completer is the slice of the OpenAI client the annotator needs.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client annotates metadata trees through a chat-completion API.
type Client struct {
	api   completer
	model string
	log   *logrus.Logger
}

// New builds a Client for the given API key. An empty model selects the
// default.
func New(apiKey, model string, log *logrus.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
		log:   log,
	}
}

// AnnotateWorkbook fills the Annotation fields of the workbook and its
// sheets. A failed sheet degrades to an empty annotation; only a failure
// of every request is reported as an error.
func (c *Client) AnnotateWorkbook(ctx context.Context, wb *models.WorkbookMetadata) error {
	var failures int

	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		payload, err := output.SheetToJSON(sheet, false)
		if err != nil {
			return errors.Wrap(err, "serialize sheet")
		}
		summary, err := c.complete(ctx, sheetPrompt, string(payload))
		if err != nil {
			c.log.WithError(err).WithField("sheet", sheet.Name).Warn("sheet annotation failed")
			failures++
			continue
		}
		sheet.Annotation = summary
	}

	payload, err := output.ToJSON(wb, false)
	if err != nil {
		return errors.Wrap(err, "serialize workbook")
	}
	summary, err := c.complete(ctx, workbookPrompt, string(payload))
	if err != nil {
		failures++
	} else {
		wb.Annotation = summary
	}

	if failures > 0 && failures == len(wb.Sheets)+1 {
		return errors.New("all annotation requests failed")
	}
	return nil
}

const (
	sheetPrompt = "Summarize the structure of this spreadsheet sheet " +
		"(tables, charts, diagrams, text blocks) in two or three plain sentences."
	workbookPrompt = "Summarize what this workbook contains in two or three plain sentences."
)

func (c *Client) complete(ctx context.Context, prompt, payload string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
