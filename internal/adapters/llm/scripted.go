package llm

import (
	"context"
	"errors"
	"sync"

	"github.com/PabloGalante/brainbuddy/internal/domain"
)

// ScriptedReply is one canned backend answer.
type ScriptedReply struct {
	Text string
	Err  error
}

func Reply(text string) ScriptedReply {
	return ScriptedReply{Text: text}
}

func Fail(err error) ScriptedReply {
	return ScriptedReply{Err: err}
}

// ScriptedCall records what a ScriptedLLM was asked.
type ScriptedCall struct {
	Prompt  string
	ConvCtx domain.ConversationContext
}

// ScriptedLLM replays canned replies in order and records every call.
// Used by tests that need exact backend output.
type ScriptedLLM struct {
	mu      sync.Mutex
	replies []ScriptedReply
	calls   []ScriptedCall
}

var ErrScriptExhausted = errors.New("scripted llm: no reply left")

func NewScriptedLLM(replies ...ScriptedReply) *ScriptedLLM {
	return &ScriptedLLM{replies: replies}
}

func (s *ScriptedLLM) GenerateReply(ctx context.Context, prompt string, convCtx domain.ConversationContext) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, ScriptedCall{Prompt: prompt, ConvCtx: convCtx})
	if len(s.replies) == 0 {
		return "", ErrScriptExhausted
	}

	next := s.replies[0]
	s.replies = s.replies[1:]
	return next.Text, next.Err
}

func (s *ScriptedLLM) Calls() []ScriptedCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ScriptedCall, len(s.calls))
	copy(out, s.calls)
	return out
}
