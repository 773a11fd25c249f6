// Package pipeline runs one question through routing, table selection, query
// synthesis, execution and answering, or through knowledge-base retrieval.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/pkg/agent/executor"
	"ai-sqlagent-be/pkg/agent/history"
	"ai-sqlagent-be/pkg/agent/render"
	"ai-sqlagent-be/pkg/agent/retrieval"
	"ai-sqlagent-be/pkg/agent/route"
	"ai-sqlagent-be/pkg/agent/selector"
	"ai-sqlagent-be/pkg/agent/synth"
	"ai-sqlagent-be/pkg/catalog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ai-sqlagent-be/pipeline")

type Step string

const (
	StepRoute           Step = "route"
	StepSelectTables    Step = "select_tables"
	StepSynthesizeQuery Step = "synthesize_query"
	StepExecute         Step = "execute"
	StepAnswer          Step = "answer"
	StepRetrieve        Step = "retrieve"
	StepDone            Step = "done"
)

// StageError aborts a turn; it names the step that failed.
type StageError struct {
	Stage Step
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type RouteClassifier interface {
	Classify(ctx context.Context, question, summary string, hist history.History) (route.Route, error)
}

type QuerySynthesizer interface {
	Synthesize(ctx context.Context, question, renderedSchema string, dialect synth.Dialect, hist history.History) (string, history.History, error)
}

type AnswerGenerator interface {
	Generate(ctx context.Context, question, result string, hist history.History) (string, history.History, error)
}

// Deps are the collaborators of an Orchestrator. Retriever may be nil, in
// which case questions routed to the knowledge base get an error answer.
type Deps struct {
	Classifier  RouteClassifier
	Selector    selector.Selector
	Synthesizer QuerySynthesizer
	Executor    executor.Executor
	Answerer    AnswerGenerator
	Retriever   retrieval.Retriever
	Logger      logger.ILogger
}

type Config struct {
	TopK    int
	Dialect synth.Dialect
}

type Orchestrator struct {
	catalog *catalog.Catalog
	summary string
	deps    Deps
	cfg     Config
	logger  logger.ILogger
}

func New(cat *catalog.Catalog, deps Deps, cfg Config) (*Orchestrator, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	if deps.Classifier == nil || deps.Selector == nil || deps.Synthesizer == nil || deps.Executor == nil || deps.Answerer == nil {
		return nil, fmt.Errorf("pipeline: missing collaborator")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Orchestrator{catalog: cat, summary: cat.Summary(), deps: deps, cfg: cfg, logger: log}, nil
}

func (o *Orchestrator) Catalog() *catalog.Catalog { return o.catalog }

type stageFunc func(ctx context.Context, s State) (Step, State, error)

func (o *Orchestrator) stage(step Step) stageFunc {
	switch step {
	case StepRoute:
		return o.route
	case StepSelectTables:
		return o.selectTables
	case StepSynthesizeQuery:
		return o.synthesize
	case StepExecute:
		return o.execute
	case StepAnswer:
		return o.answer
	case StepRetrieve:
		return o.retrieve
	default:
		return nil
	}
}

// Run processes one question. hist is the history carried over from earlier
// turns; the returned State holds the extended history. A returned error is
// always a *StageError, and the State reflects every step that completed.
func (o *Orchestrator) Run(ctx context.Context, question string, hist history.History) (State, error) {
	state := State{Question: question, History: hist}
	step := StepRoute
	started := time.Now()

	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()

	for step != StepDone {
		fn := o.stage(step)
		if fn == nil {
			return state, &StageError{Stage: step, Err: fmt.Errorf("no such step")}
		}

		stageCtx, stageSpan := tracer.Start(ctx, "pipeline."+string(step),
			trace.WithAttributes(attribute.String("agent.stage", string(step))))
		next, update, err := fn(stageCtx, state)
		if err != nil {
			stageSpan.RecordError(err)
			stageSpan.SetStatus(codes.Error, err.Error())
			stageSpan.End()
			span.SetStatus(codes.Error, string(step))
			o.logger.Error("PIPELINE", "Stage failed", map[string]interface{}{
				"stage": string(step),
				"error": err.Error(),
			})
			return state, &StageError{Stage: step, Err: err}
		}
		stageSpan.End()
		state = state.merge(update)

		o.logger.Debug("PIPELINE", "Stage completed", map[string]interface{}{
			"stage": string(step),
			"next":  string(next),
		})
		step = next
	}

	span.SetAttributes(
		attribute.String("agent.route", string(state.Route)),
		attribute.StringSlice("agent.tables", state.RelevantTables),
	)
	o.logger.Info("PIPELINE", "Turn completed", map[string]interface{}{
		"route":       string(state.Route),
		"tables":      state.RelevantTables,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return state, nil
}

func (o *Orchestrator) route(ctx context.Context, s State) (Step, State, error) {
	r, err := o.deps.Classifier.Classify(ctx, s.Question, o.summary, s.History)
	if err != nil {
		return "", State{}, err
	}
	switch r {
	case route.RouteSQL:
		return StepSelectTables, State{Route: r}, nil
	case route.RouteRAG:
		return StepRetrieve, State{Route: r}, nil
	default:
		return "", State{}, fmt.Errorf("%w: %q", route.ErrInvalidRoute, r)
	}
}

func (o *Orchestrator) selectTables(ctx context.Context, s State) (Step, State, error) {
	names, err := o.deps.Selector.Select(ctx, s.Question, o.catalog, o.cfg.TopK)
	if err != nil {
		return "", State{}, err
	}
	return StepSynthesizeQuery, State{
		RelevantTables: names,
		History:        s.History.Tables(names),
	}, nil
}

func (o *Orchestrator) synthesize(ctx context.Context, s State) (Step, State, error) {
	schema := render.Catalog(o.catalog, s.RelevantTables)
	query, hist, err := o.deps.Synthesizer.Synthesize(ctx, s.Question, schema, o.cfg.Dialect, s.History)
	if err != nil {
		return "", State{}, err
	}
	return StepExecute, State{Query: query, History: hist}, nil
}

func (o *Orchestrator) execute(ctx context.Context, s State) (Step, State, error) {
	result := o.deps.Executor.Execute(ctx, s.Query)
	if result == "" {
		result = executor.EmptyResult
	}
	return StepAnswer, State{Result: result, History: s.History.Result(result)}, nil
}

func (o *Orchestrator) answer(ctx context.Context, s State) (Step, State, error) {
	a, hist, err := o.deps.Answerer.Generate(ctx, s.Question, s.Result, s.History)
	if err != nil {
		return "", State{}, err
	}
	return StepDone, State{Answer: a, History: hist}, nil
}

// retrieve never fails the turn: adapter errors become the answer.
func (o *Orchestrator) retrieve(ctx context.Context, s State) (Step, State, error) {
	hist := s.History.User(s.Question)

	if o.deps.Retriever == nil {
		reason := "knowledge base is not configured"
		return StepDone, State{Answer: history.PrefixError + reason, History: hist.Error(reason)}, nil
	}

	res, err := o.deps.Retriever.RetrieveAndAnswer(ctx, s.Question)
	if err != nil {
		o.logger.Warn("PIPELINE", "Retrieval failed", map[string]interface{}{"error": err.Error()})
		reason := err.Error()
		return StepDone, State{Answer: history.PrefixError + reason, History: hist.Error(reason)}, nil
	}

	res = retrieval.Normalize(res)
	answer := retrieval.WithCitations(res.Answer, res.Citations)
	return StepDone, State{Answer: answer, Citations: res.Citations, History: hist.Answer(answer)}, nil
}
