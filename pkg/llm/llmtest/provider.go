// Package llmtest provides deterministic llm.LLMProvider doubles for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"ai-sqlagent-be/pkg/llm"
)

// ErrExhausted is returned once a Provider has no scripted replies left.
var ErrExhausted = errors.New("llmtest: no scripted response left")

// Call records one invocation.
type Call struct {
	History []llm.Message
	Options llm.Options
}

// Provider replays scripted replies in order, or delegates to Handler when set.
type Provider struct {
	Handler func(history []llm.Message, opts llm.Options) (string, error)

	mu        sync.Mutex
	responses []string
	calls     []Call
}

var _ llm.LLMProvider = &Provider{}

// NewProvider returns a provider that answers with responses, one per call.
func NewProvider(responses ...string) *Provider {
	return &Provider{responses: responses}
}

// NewFunc returns a provider driven by fn.
func NewFunc(fn func(history []llm.Message, opts llm.Options) (string, error)) *Provider {
	return &Provider{Handler: fn}
}

// Failing returns a provider whose every call fails with err.
func Failing(err error) *Provider {
	return NewFunc(func([]llm.Message, llm.Options) (string, error) { return "", err })
}

func (p *Provider) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	o := llm.NewOptions(llm.Options{}, opts...)

	p.mu.Lock()
	p.calls = append(p.calls, Call{History: append([]llm.Message(nil), history...), Options: *o})
	if p.Handler != nil {
		p.mu.Unlock()
		return p.Handler(history, *o)
	}
	defer p.mu.Unlock()

	if len(p.responses) == 0 {
		return "", ErrExhausted
	}
	next := p.responses[0]
	p.responses = p.responses[1:]
	return next, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// Calls returns a copy of the recorded invocations.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// LastPrompt joins the contents of the latest call, for substring assertions.
func (p *Provider) LastPrompt() string {
	calls := p.Calls()
	if len(calls) == 0 {
		return ""
	}
	var out string
	for _, m := range calls[len(calls)-1].History {
		out += m.Content + "\n"
	}
	return out
}
