package app

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"answerbridge/internal/ai"
	"answerbridge/internal/config"
	"answerbridge/internal/extract"
	"answerbridge/internal/model"
)

type fakeCompleter struct {
	answer string
	err    error
	calls  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, question string) (string, error) {
	f.calls = append(f.calls, question)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type recordingObserver struct {
	events []model.AskEvent
	err    error
}

func (r *recordingObserver) ObserveAsk(ctx context.Context, event model.AskEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func zipWith(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(body))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newService(completer ai.Completer, observers ...AskObserver) *AskService {
	return NewAskService(extract.New(extract.Config{}), completer, quietLogger(), observers...)
}

func TestAsk_TextQuestion(t *testing.T) {
	completer := &fakeCompleter{answer: "Hi there"}
	svc := newService(completer)

	result, err := svc.Ask(context.Background(), AskInput{Question: "Hello"})
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if len(completer.calls) != 1 || completer.calls[0] != "Hello" {
		t.Fatalf("completer calls = %q", completer.calls)
	}
	if result.Answer != "Hi there" || result.Source != SourceText {
		t.Errorf("result = %+v", result)
	}
}

func TestAsk_ArchiveQuestion(t *testing.T) {
	completer := &fakeCompleter{answer: "4"}
	svc := newService(completer)

	data := zipWith(t, map[string]string{"data.csv": "answer\nWhat is 2+2?\n"})
	result, err := svc.Ask(context.Background(), AskInput{
		Question: "ignored",
		Upload:   &Upload{Filename: "q.zip", Data: data},
	})
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if len(completer.calls) != 1 || completer.calls[0] != "What is 2+2?" {
		t.Fatalf("completer calls = %q", completer.calls)
	}
	if result.Source != SourceArchive || result.Entry != "data.csv" {
		t.Errorf("result = %+v", result)
	}
}

func TestAsk_ExtractionFailureSkipsCompleter(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		kind     extract.Kind
	}{
		{"two csv files", "q.zip", zipWith(t, map[string]string{"a.csv": "answer\n1\n", "b.csv": "answer\n2\n"}), extract.KindAmbiguousOrMissingTable},
		{"missing column", "q.zip", zipWith(t, map[string]string{"a.csv": "question\n1\n"}), extract.KindMissingColumn},
		{"not a zip name", "q.txt", []byte("hello"), extract.KindUnsupportedFormat},
		{"corrupt", "q.zip", []byte("hello"), extract.KindCorruptArchive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{answer: "should not be used"}
			svc := newService(completer)

			result, err := svc.Ask(context.Background(), AskInput{
				Question: "fallback text",
				Upload:   &Upload{Filename: tt.filename, Data: tt.data},
			})
			if result != nil {
				t.Errorf("result should be nil, got %+v", result)
			}
			if extract.KindOf(err) != tt.kind {
				t.Fatalf("kind = %q, want %q (%v)", extract.KindOf(err), tt.kind, err)
			}
			if len(completer.calls) != 0 {
				t.Errorf("completer must not be called, got %q", completer.calls)
			}
		})
	}
}

func TestAsk_CompletionFailure(t *testing.T) {
	remote := &ai.RemoteCallError{Provider: config.ProviderOpenAI, Err: errors.New("boom")}
	svc := newService(&fakeCompleter{err: remote})

	_, err := svc.Ask(context.Background(), AskInput{Question: "Hello"})
	var remoteErr *ai.RemoteCallError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteCallError, got %v", err)
	}
}

func TestAsk_EmptyQuestionStillSent(t *testing.T) {
	completer := &fakeCompleter{answer: "?"}
	svc := newService(completer)

	if _, err := svc.Ask(context.Background(), AskInput{}); err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if len(completer.calls) != 1 || completer.calls[0] != "" {
		t.Fatalf("completer calls = %q", completer.calls)
	}
}

func TestAsk_ObserversReceiveEvent(t *testing.T) {
	first := &recordingObserver{err: errors.New("broker down")}
	second := &recordingObserver{}
	svc := newService(&fakeCompleter{answer: "four"}, first, second)

	data := zipWith(t, map[string]string{"data.csv": "answer\nWhat is 2+2?\n"})
	_, err := svc.Ask(context.Background(), AskInput{
		RequestID: "req-1",
		Upload:    &Upload{Filename: "q.zip", Data: data},
	})
	if err != nil {
		t.Fatalf("observer failure must not fail the request: %v", err)
	}

	if len(first.events) != 1 || len(second.events) != 1 {
		t.Fatalf("each observer should see one event, got %d and %d", len(first.events), len(second.events))
	}
	ev := second.events[0]
	if ev.ID == "" || ev.RequestID != "req-1" {
		t.Errorf("ids = %q / %q", ev.ID, ev.RequestID)
	}
	if ev.Source != string(SourceArchive) || ev.Outcome != OutcomeOK {
		t.Errorf("source/outcome = %q / %q", ev.Source, ev.Outcome)
	}
	if ev.ArchiveEntry != "data.csv" || ev.QuestionChars != 12 || ev.AnswerChars != 4 {
		t.Errorf("event = %+v", ev)
	}
}

func TestAsk_EventOutcomes(t *testing.T) {
	obs := &recordingObserver{}
	svc := newService(&fakeCompleter{err: &ai.RemoteCallError{Provider: "openai", Err: errors.New("x")}}, obs)

	svc.Ask(context.Background(), AskInput{Question: "q"})
	svc.Ask(context.Background(), AskInput{Upload: &Upload{Filename: "a.txt"}})

	if len(obs.events) != 2 {
		t.Fatalf("events = %d", len(obs.events))
	}
	if obs.events[0].Outcome != OutcomeRemoteCallFailure {
		t.Errorf("outcome = %q", obs.events[0].Outcome)
	}
	if obs.events[1].Outcome != string(extract.KindUnsupportedFormat) {
		t.Errorf("outcome = %q", obs.events[1].Outcome)
	}
}

func TestOutcomeOf(t *testing.T) {
	if outcomeOf(nil) != OutcomeOK {
		t.Error("nil should be ok")
	}
	if outcomeOf(errors.New("other")) != OutcomeInternalError {
		t.Error("unknown errors should be internal")
	}
}
