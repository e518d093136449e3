package pampac

// Builder wraps a Parser with chainable composition methods:
//
//	P(Ann(Type("Token"))).Then(Ann(Type("Token"))).Within(Type("Sentence"))
type Builder struct {
	Parser
}

// P starts a builder chain.
func P(p Parser) Builder {
	if b, ok := p.(Builder); ok {
		return b
	}
	return Builder{Parser: mustParser("P", p)}
}

func (b Builder) String() string { return describeParser(b.Parser) }

// Unwrap returns the built parser.
func (b Builder) Unwrap() Parser { return b.Parser }

func (b Builder) prepend(ps []Parser) []Parser {
	return append([]Parser{b.Parser}, ps...)
}

// Or is Or(b, ps...).
func (b Builder) Or(ps ...Parser) Builder { return Builder{Or(b.prepend(ps)...)} }

// Then is Seq(b, ps...).
func (b Builder) Then(ps ...Parser) Builder { return Builder{Seq(b.prepend(ps)...)} }

// And is And(b, ps...).
func (b Builder) And(ps ...Parser) Builder { return Builder{And(b.prepend(ps)...)} }

// All is All(b, ps...).
func (b Builder) All(ps ...Parser) Builder { return Builder{All(b.prepend(ps)...)} }

// Times is N(b, min, max).
func (b Builder) Times(min, max int) Builder { return Builder{N(b.Parser, min, max)} }

// Repeat is N(b, min, Unbounded).
func (b Builder) Repeat(min int) Builder { return Builder{N(b.Parser, min, Unbounded)} }

// Optional is N(b, 0, 1).
func (b Builder) Optional() Builder { return Builder{N(b.Parser, 0, 1)} }

func (b Builder) Lookahead(la Parser) Builder { return Builder{Lookahead(b.Parser, la)} }

func (b Builder) Where(pred Predicate) Builder { return Builder{Filter(b.Parser, pred)} }

func (b Builder) Call(fn func(s *Success, c *Context, loc Location)) Builder {
	return Builder{Call(b.Parser, fn)}
}

func (b Builder) Find(byAnns bool) Builder { return Builder{Find(b.Parser, byAnns)} }

func (b Builder) Within(opts ...Option) Builder { return Builder{Within(b.Parser, opts...)} }

func (b Builder) NotWithin(opts ...Option) Builder { return Builder{NotWithin(b.Parser, opts...)} }

func (b Builder) Overlapping(opts ...Option) Builder { return Builder{Overlapping(b.Parser, opts...)} }

func (b Builder) NotOverlapping(opts ...Option) Builder {
	return Builder{NotOverlapping(b.Parser, opts...)}
}

func (b Builder) Covering(opts ...Option) Builder { return Builder{Covering(b.Parser, opts...)} }

func (b Builder) NotCovering(opts ...Option) Builder { return Builder{NotCovering(b.Parser, opts...)} }

func (b Builder) At(opts ...Option) Builder { return Builder{AtAnn(b.Parser, opts...)} }

func (b Builder) NotAt(opts ...Option) Builder { return Builder{NotAtAnn(b.Parser, opts...)} }

func (b Builder) Before(opts ...Option) Builder { return Builder{Before(b.Parser, opts...)} }

func (b Builder) NotBefore(opts ...Option) Builder { return Builder{NotBefore(b.Parser, opts...)} }

func (b Builder) Coextensive(opts ...Option) Builder { return Builder{Coextensive(b.Parser, opts...)} }

func (b Builder) NotCoextensive(opts ...Option) Builder {
	return Builder{NotCoextensive(b.Parser, opts...)}
}
