// Package narrative writes the prose section of an audit report. Classification
// is already frozen when a writer runs; the writer only explains it.
package narrative

import (
	"context"
	"errors"
	"strings"
	"time"

	"aisg-audit/internal/scoring"

	"go.uber.org/zap"
)

const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
	SourceTemplate = "template"
)

const DefaultTimeout = 20 * time.Second

var ErrEmptyCompletion = errors.New("empty completion")

type Request struct {
	EmployeeName   string
	EmployeeCode   string
	PositionCode   string
	Year           int
	Quarter        int
	Metrics        scoring.Metrics
	Target         scoring.Target
	Coverage       int
	TeamSize       int
	Warnings       []string
	Classification scoring.Result
}

type Narrative struct {
	Text   string
	Source string
}

type Writer interface {
	Write(ctx context.Context, req Request) (Narrative, error)
}

// Completer is one chat-completion round trip against a named model.
type Completer interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

type TieredWriter struct {
	completer Completer
	primary   string
	fallback  string
	timeout   time.Duration
	logger    *zap.Logger
}

type Option func(*TieredWriter)

func WithTimeout(d time.Duration) Option {
	return func(w *TieredWriter) {
		if d > 0 {
			w.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(w *TieredWriter) {
		if l != nil {
			w.logger = l.Named("narrative")
		}
	}
}

// NewTieredWriter: completer boleh nil, writer lalu selalu memakai template.
func NewTieredWriter(completer Completer, primaryModel, fallbackModel string, opts ...Option) *TieredWriter {
	w := &TieredWriter{
		completer: completer,
		primary:   primaryModel,
		fallback:  fallbackModel,
		timeout:   DefaultTimeout,
		logger:    zap.L().Named("narrative"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write never fails: when both models are unavailable the deterministic
// template is returned.
func (w *TieredWriter) Write(ctx context.Context, req Request) (Narrative, error) {
	if w.completer != nil {
		system, user := buildPrompt(req)
		tiers := []struct {
			model  string
			source string
		}{
			{w.primary, SourcePrimary},
			{w.fallback, SourceFallback},
		}
		for _, tier := range tiers {
			if tier.model == "" {
				continue
			}
			text, err := w.complete(ctx, tier.model, system, user)
			if err == nil {
				return Narrative{Text: text, Source: tier.source}, nil
			}
			w.logger.Warn("narrative tier failed",
				zap.String("tier", tier.source),
				zap.String("model", tier.model),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				break
			}
		}
	}

	return Narrative{Text: Template(req), Source: SourceTemplate}, nil
}

func (w *TieredWriter) complete(ctx context.Context, model, system, user string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	text, err := w.completer.Complete(cctx, model, system, user)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
