// Package query turns filter query text into operation trees: a tokenizer,
// a recursive-descent parser over prefix (Polish) notation, and an optional
// cache of parsed filters.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nlstn/go-filters/internal/ast"
	"github.com/nlstn/go-filters/internal/filtererrors"
	"github.com/nlstn/go-filters/internal/observability"
	"github.com/nlstn/go-filters/internal/schema"
)

// TrailingPolicy decides what happens to tokens left over after a complete
// expression has been parsed.
type TrailingPolicy int

const (
	// TrailingIgnore silently drops leftover tokens.
	TrailingIgnore TrailingPolicy = iota
	// TrailingReject fails with ErrTrailingTokens.
	TrailingReject
)

// Option configures a Parser.
type Option func(*Parser)

// WithTokenizer replaces the default QuotedTokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(p *Parser) {
		p.tokenizer = t
	}
}

// WithReverse consumes tokens from the end of the query, so operators follow
// their operands: "Vincent name eq" reads as "eq name Vincent".
func WithReverse() Option {
	return func(p *Parser) {
		p.reverse = true
	}
}

// WithTrailingTokens sets the policy for leftover tokens.
func WithTrailingTokens(policy TrailingPolicy) Option {
	return func(p *Parser) {
		p.trailing = policy
	}
}

// WithCache keeps up to size parsed filters keyed by query text. A size of
// zero or less disables caching.
func WithCache(size int) Option {
	return func(p *Parser) {
		if size <= 0 {
			p.cache = nil
			return
		}
		p.cache = newFilterCache(size)
	}
}

// WithLogger sets the logger used for per-query debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithObservability enables tracing and metrics for parsing.
func WithObservability(cfg *observability.Config) Option {
	return func(p *Parser) {
		p.obs = cfg
	}
}

// Parser parses queries against one schema registry. It is safe for
// concurrent use as long as the registry is not mutated meanwhile.
type Parser struct {
	options   *schema.Options
	tokenizer Tokenizer
	reverse   bool
	trailing  TrailingPolicy
	cache     *filterCache
	logger    *slog.Logger
	obs       *observability.Config
}

// NewParser creates a parser over options.
func NewParser(options *schema.Options, opts ...Option) (*Parser, error) {
	if options == nil {
		return nil, filtererrors.Schema(filtererrors.ErrNoFields, "filter options are nil")
	}

	p := &Parser{
		options:   options,
		tokenizer: QuotedTokenizer{},
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.tokenizer == nil {
		return nil, filtererrors.Schema(filtererrors.ErrInvalidTokenizer, "tokenizer is nil")
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.obs == nil {
		p.obs = observability.NewConfig()
	}
	return p, nil
}

// Options returns the registry the parser resolves keywords and fields against.
func (p *Parser) Options() *schema.Options {
	return p.options
}

// Parse parses input into a Filter. Malformed input yields a FormatError.
func (p *Parser) Parse(input string) (*ast.Filter, error) {
	return p.ParseContext(context.Background(), input)
}

// ParseContext is Parse with a context carrying the caller's trace.
func (p *Parser) ParseContext(ctx context.Context, input string) (*ast.Filter, error) {
	tracer := p.obs.Tracer()
	ctx, span := tracer.StartParse(ctx, input, p.obs.QueryTracingEnabled())
	logger := observability.LoggerWithTrace(ctx, p.logger)

	if p.cache != nil {
		if f, ok := p.cache.get(input); ok {
			tracer.EndParse(span, 0, ast.Depth(f.Root), true, nil)
			p.obs.Metrics().RecordCacheHit(ctx)
			logger.Debug("Filter served from cache", observability.LogFieldQuery, input)
			return f, nil
		}
	}

	start := time.Now()
	tokens, root, err := p.parse(input)
	duration := time.Since(start)

	tracer.EndParse(span, len(tokens), ast.Depth(root), false, err)
	p.obs.Metrics().RecordParse(ctx, duration, err)

	if err != nil {
		logger.Debug("Rejected filter",
			observability.LogFieldQuery, input,
			observability.LogFieldError, err)
		return nil, err
	}

	f := &ast.Filter{Source: input, Root: root}
	if p.cache != nil {
		p.cache.put(f)
	}
	logger.Debug("Parsed filter",
		observability.LogFieldQuery, input,
		"tokens", len(tokens),
		observability.LogFieldDuration, float64(duration.Microseconds())/1000)
	return f, nil
}

// TryParse parses input and reports success instead of an error. Custom
// converters and constructors are user code, so a panic in one of them is
// also reported as failure.
func (p *Parser) TryParse(input string) (f *ast.Filter, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("Recovered from panic while parsing filter",
				observability.LogFieldQuery, input, "panic", fmt.Sprint(r))
			f, ok = nil, false
		}
	}()

	f, err := p.Parse(input)
	if err != nil {
		return nil, false
	}
	return f, true
}

func (p *Parser) parse(input string) ([]string, ast.Operation, error) {
	tokens, err := p.tokenizer.Tokenize(input)
	if err != nil {
		return nil, nil, err
	}

	stack := &tokenStack{tokens: tokens, reverse: p.reverse}
	root, err := p.operation(stack)
	if err != nil {
		return tokens, nil, err
	}

	if stack.len() > 0 && p.trailing == TrailingReject {
		return tokens, nil, filtererrors.Format(filtererrors.ErrTrailingTokens, strings.Join(stack.tokens, " "))
	}
	return tokens, root, nil
}

// operation parses one expression from the front of the stack.
func (p *Parser) operation(stack *tokenStack) (ast.Operation, error) {
	token, ok := stack.pop()
	if !ok {
		return nil, filtererrors.Format(filtererrors.ErrUnexpectedEnd, "")
	}
	keyword := strings.ToUpper(token)

	if ctor, ok := p.options.Binary(keyword); ok {
		left, err := p.operation(stack)
		if err != nil {
			return nil, err
		}
		right, err := p.operation(stack)
		if err != nil {
			return nil, err
		}
		return ctor(left, right), nil
	}

	if ctor, ok := p.options.Unary(keyword); ok {
		operand, err := p.operation(stack)
		if err != nil {
			return nil, err
		}
		return ctor(operand), nil
	}

	if ctor, ok := p.options.Comparison(keyword); ok {
		if stack.len() < 2 {
			return nil, filtererrors.Format(filtererrors.ErrMissingTokens, keyword)
		}
		name, _ := stack.pop()
		raw, _ := stack.pop()

		field, ok := p.options.Field(name)
		if !ok {
			return nil, filtererrors.Format(filtererrors.ErrPropertyNotFound, name)
		}
		value, err := p.options.Convert(raw, field.Type)
		if err != nil {
			return nil, err
		}
		return ctor(field.Name, value)
	}

	return nil, filtererrors.Format(filtererrors.ErrInvalidOperation, token)
}

// tokenStack pops tokens from the front, or from the back when reverse is set.
type tokenStack struct {
	tokens  []string
	reverse bool
}

func (s *tokenStack) len() int {
	return len(s.tokens)
}

func (s *tokenStack) pop() (string, bool) {
	n := len(s.tokens)
	if n == 0 {
		return "", false
	}
	if s.reverse {
		t := s.tokens[n-1]
		s.tokens = s.tokens[:n-1]
		return t, true
	}
	t := s.tokens[0]
	s.tokens = s.tokens[1:]
	return t, true
}
