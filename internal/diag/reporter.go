package diag

// Reporter receives diagnostics as the rule compiler finds them.
type Reporter interface {
	Report(code Code, sev Severity, pos Position, where, msg string, notes []Note)
}

func New(sev Severity, code Code, pos Position, where, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Pos: pos, Where: where, Message: msg}
}

func NewError(code Code, pos Position, where, msg string) Diagnostic {
	return New(SevError, code, pos, where, msg)
}

// WithNote returns a copy of d with one more note.
func (d Diagnostic) WithNote(where, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Where: where, Msg: msg})
	return d
}

// Pending is a diagnostic being assembled; Emit hands it to the reporter
// once.
type Pending struct {
	to   Reporter
	d    Diagnostic
	sent bool
}

// ReportError starts an error diagnostic for r.
func ReportError(r Reporter, code Code, pos Position, where, msg string) *Pending {
	return &Pending{to: r, d: NewError(code, pos, where, msg)}
}

func (p *Pending) WithNote(where, msg string) *Pending {
	p.d = p.d.WithNote(where, msg)
	return p
}

func (p *Pending) Emit() {
	if p.sent || p.to == nil {
		return
	}
	p.sent = true
	p.to.Report(p.d.Code, p.d.Severity, p.d.Pos, p.d.Where, p.d.Message, p.d.Notes)
}

// Diagnostic returns what Emit would send.
func (p *Pending) Diagnostic() Diagnostic { return p.d }

// BagReporter stores into Bag; a nil Bag drops everything.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, pos Position, where, msg string, notes []Note) {
	if r.Bag != nil {
		r.Bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Pos: pos, Where: where, Notes: notes})
	}
}

type reportKey struct {
	code  Code
	sev   Severity
	pos   Position
	where string
	msg   string
}

// DedupReporter forwards each distinct diagnostic once. Notes do not take
// part in the comparison.
type DedupReporter struct {
	next Reporter
	seen map[reportKey]bool
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: map[reportKey]bool{}}
}

func (r *DedupReporter) Report(code Code, sev Severity, pos Position, where, msg string, notes []Note) {
	k := reportKey{code, sev, pos, where, msg}
	if r.seen[k] {
		return
	}
	r.seen[k] = true
	if r.next != nil {
		r.next.Report(code, sev, pos, where, msg, notes)
	}
}
