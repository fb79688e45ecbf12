package app

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"answerbridge/internal/ai"
	"answerbridge/internal/extract"
	"answerbridge/internal/model"
)

type Source string

const (
	SourceText    Source = "text"
	SourceArchive Source = "archive"
)

const (
	OutcomeOK                = "ok"
	OutcomeRemoteCallFailure = "remote_call_failure"
	OutcomeInternalError     = "internal_error"
)

type Extractor interface {
	Extract(data []byte, filename string) (extract.Question, error)
}

// AskObserver receives one event per handled request. Errors are logged and
// never reach the caller.
type AskObserver interface {
	ObserveAsk(ctx context.Context, event model.AskEvent) error
}

type Upload struct {
	Filename string
	Data     []byte
}

type AskInput struct {
	RequestID string
	Question  string
	Upload    *Upload // nil = answer Question directly
}

type AskResult struct {
	Answer string `json:"answer"`
	Source Source `json:"source"`
	Entry  string `json:"entry,omitempty"`
}

type AskService struct {
	extractor Extractor
	completer ai.Completer
	observers []AskObserver
	logger    *slog.Logger
	now       func() time.Time
}

func NewAskService(extractor Extractor, completer ai.Completer, logger *slog.Logger, observers ...AskObserver) *AskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AskService{
		extractor: extractor,
		completer: completer,
		observers: observers,
		logger:    logger,
		now:       time.Now,
	}
}

// Ask answers either the uploaded archive's question or the typed one.
// A failed extraction is returned as is; the completer is not called.
func (s *AskService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	started := s.now()
	event := model.AskEvent{
		ID:        uuid.NewString(),
		RequestID: input.RequestID,
		Source:    string(SourceText),
	}

	result, err := s.ask(ctx, input, &event)

	event.Outcome = outcomeOf(err)
	event.LatencyMS = s.now().Sub(started).Milliseconds()
	event.CreatedAt = started
	if result != nil {
		event.AnswerChars = utf8.RuneCountInString(result.Answer)
	}
	s.notify(ctx, event)

	return result, err
}

func (s *AskService) ask(ctx context.Context, input AskInput, event *model.AskEvent) (*AskResult, error) {
	question := input.Question
	source := SourceText
	entry := ""

	if input.Upload != nil {
		source = SourceArchive
		event.Source = string(source)

		q, err := s.extractor.Extract(input.Upload.Data, input.Upload.Filename)
		if err != nil {
			s.logger.InfoContext(ctx, "archive rejected",
				slog.String("request_id", input.RequestID),
				slog.String("filename", input.Upload.Filename),
				slog.String("kind", string(extract.KindOf(err))),
				slog.Any("error", err),
			)
			return nil, err
		}
		question = q.Text
		entry = q.Entry
		event.ArchiveEntry = q.Entry
		s.logger.DebugContext(ctx, "question extracted",
			slog.String("request_id", input.RequestID),
			slog.String("entry", q.Entry),
			slog.Int("rows", q.Rows),
		)
	}
	event.QuestionChars = utf8.RuneCountInString(question)

	answer, err := s.completer.Complete(ctx, question)
	if err != nil {
		s.logger.WarnContext(ctx, "completion failed",
			slog.String("request_id", input.RequestID),
			slog.String("source", string(source)),
			slog.Any("error", err),
		)
		return nil, err
	}

	return &AskResult{Answer: answer, Source: source, Entry: entry}, nil
}

func (s *AskService) notify(ctx context.Context, event model.AskEvent) {
	if len(s.observers) == 0 {
		return
	}
	// A client that hangs up must not drop the event.
	ctx = context.WithoutCancel(ctx)
	for _, o := range s.observers {
		if err := o.ObserveAsk(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "observe ask failed",
				slog.String("request_id", event.RequestID),
				slog.Any("error", err),
			)
		}
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if kind := extract.KindOf(err); kind != "" {
		return string(kind)
	}
	var remoteErr *ai.RemoteCallError
	if errors.As(err, &remoteErr) {
		return OutcomeRemoteCallFailure
	}
	return OutcomeInternalError
}
