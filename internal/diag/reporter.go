package diag

import "deoptlens/internal/source"

// Reporter is the minimal sink for diagnostics.
// Implementations: BagReporter, NopReporter, MultiReporter.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Pos, msg string)
}

// EntryReporter is implemented by reporters that keep the entry id.
type EntryReporter interface {
	ReportEntry(code Code, sev Severity, primary source.Pos, entryID, msg string)
}

// Emit sends a diagnostic through r, keeping the entry id when r supports it.
func Emit(r Reporter, d Diagnostic) {
	if r == nil {
		return
	}
	if er, ok := r.(EntryReporter); ok && d.EntryID != "" {
		er.ReportEntry(d.Code, d.Severity, d.Primary, d.EntryID, d.Message)
		return
	}
	r.Report(d.Code, d.Severity, d.Primary, d.Message)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Pos, msg string) {
	r.ReportEntry(code, sev, primary, "", msg)
}

func (r BagReporter) ReportEntry(code Code, sev Severity, primary source.Pos, entryID, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, EntryID: entryID,
	})
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, source.Pos, string) {}

// MultiReporter fans out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(code Code, sev Severity, primary source.Pos, msg string) {
	for _, r := range m {
		if r != nil {
			r.Report(code, sev, primary, msg)
		}
	}
}

func (m MultiReporter) ReportEntry(code Code, sev Severity, primary source.Pos, entryID, msg string) {
	d := Diagnostic{Code: code, Severity: sev, Primary: primary, EntryID: entryID, Message: msg}
	for _, r := range m {
		Emit(r, d)
	}
}
