package devtools

// ChangeDetector decides whether the scene mirror must be rebuilt by comparing
// scene identity tokens; it never inspects the graph itself.
type ChangeDetector struct {
	last     string
	recorded bool
}

// ShouldRebuild reports whether token differs from the last recorded one and
// records it. An empty token carries no identity and always rebuilds.
func (d *ChangeDetector) ShouldRebuild(token string) bool {
	if token == "" {
		d.last, d.recorded = "", false
		return true
	}
	if d.recorded && d.last == token {
		return false
	}
	d.last, d.recorded = token, true
	return true
}

// Reset forgets the recorded token so the next scene always rebuilds.
func (d *ChangeDetector) Reset() {
	d.last, d.recorded = "", false
}

// Token returns the last recorded token, if any.
func (d *ChangeDetector) Token() (string, bool) {
	return d.last, d.recorded
}
