package annotate

import (
	"context"
	"io"
	"testing"

	pkgerrors "github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
)

// fakeCompleter scripts chat-completion responses per call.
type fakeCompleter struct {
	replies []string
	errs    []error
	calls   int
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return openai.ChatCompletionResponse{}, f.errs[i]
	}
	reply := "summary"
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: reply}},
		},
	}, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestAnnotateWorkbook(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"sheet one", "sheet two", "whole book"}}
	client := &Client{api: fake, model: "test-model", log: quietLogger()}

	wb := &models.WorkbookMetadata{
		BookName: "report.xlsx",
		Sheets: []models.SheetMetadata{
			{Name: "Summary"},
			{Name: "Data"},
		},
	}

	require.NoError(t, client.AnnotateWorkbook(context.Background(), wb))
	assert.Equal(t, "sheet one", wb.Sheets[0].Annotation)
	assert.Equal(t, "sheet two", wb.Sheets[1].Annotation)
	assert.Equal(t, "whole book", wb.Annotation)
	assert.Equal(t, 3, fake.calls)
}

func TestAnnotateWorkbookPartialFailure(t *testing.T) {
	fake := &fakeCompleter{
		replies: []string{"", "second sheet", "whole book"},
		errs:    []error{pkgerrors.New("rate limited"), nil, nil},
	}
	client := &Client{api: fake, model: "test-model", log: quietLogger()}

	wb := &models.WorkbookMetadata{
		Sheets: []models.SheetMetadata{
			{Name: "Summary"},
			{Name: "Data"},
		},
	}

	// One failed sheet degrades; the rest still gets annotated.
	require.NoError(t, client.AnnotateWorkbook(context.Background(), wb))
	assert.Empty(t, wb.Sheets[0].Annotation)
	assert.Equal(t, "second sheet", wb.Sheets[1].Annotation)
	assert.Equal(t, "whole book", wb.Annotation)
}

func TestAnnotateWorkbookAllFail(t *testing.T) {
	boom := pkgerrors.New("unreachable")
	fake := &fakeCompleter{errs: []error{boom, boom}}
	client := &Client{api: fake, model: "test-model", log: quietLogger()}

	wb := &models.WorkbookMetadata{
		Sheets: []models.SheetMetadata{{Name: "Summary"}},
	}

	err := client.AnnotateWorkbook(context.Background(), wb)
	require.Error(t, err)
	assert.Empty(t, wb.Annotation)
}

func TestNewDefaults(t *testing.T) {
	client := New("test-key", "", nil)
	assert.Equal(t, defaultModel, client.model)
	assert.NotNil(t, client.api)
	assert.NotNil(t, client.log)
}

func TestCompleteEmptyChoices(t *testing.T) {
	client := &Client{api: emptyCompleter{}, model: "test-model", log: quietLogger()}

	_, err := client.complete(context.Background(), "p", "body")
	require.Error(t, err)
}

// emptyCompleter returns a response with no choices.
type emptyCompleter struct{}

func (emptyCompleter) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, nil
}
