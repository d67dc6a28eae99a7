package availability

// Court carries the per-court booking configuration. Interval and buffer come
// from the court's type.
type Court struct {
	ID              int64
	TenantID        int64
	CourtTypeID     int64
	IntervalMinutes int
	BufferMinutes   int
}

func (c Court) validate() error {
	if c.IntervalMinutes <= 0 {
		return configErrorf("interval_minutes", "court %d has interval %d", c.ID, c.IntervalMinutes)
	}
	if c.BufferMinutes < 0 {
		return configErrorf("buffer_minutes", "court %d has buffer %d", c.ID, c.BufferMinutes)
	}
	return nil
}

// ResolveRule selects the rule governing court on date. Court-scoped rules
// beat court-type rules, and a specific-date rule beats a weekday rule at the
// same scope. Rows that tie at one level resolve to the most recently created.
// A nil rule with a nil error means the date is closed.
func ResolveRule(court Court, date Date, rules []Rule) (*Rule, error) {
	var courtRules, typeRules []Rule
	for _, rule := range rules {
		if court.TenantID != 0 && rule.TenantID != 0 && rule.TenantID != court.TenantID {
			continue
		}
		switch {
		case rule.scopedToCourt(court.ID):
			courtRules = append(courtRules, rule)
		case rule.scopedToCourtType(court.CourtTypeID):
			typeRules = append(typeRules, rule)
		default:
			continue
		}
		if err := rule.Validate(); err != nil {
			return nil, err
		}
	}

	for _, scope := range [][]Rule{courtRules, typeRules} {
		if rule := latestMatch(scope, func(r Rule) bool { return r.matchesDate(date) }); rule != nil {
			return rule, nil
		}
		if rule := latestMatch(scope, func(r Rule) bool { return r.matchesWeekday(date) }); rule != nil {
			return rule, nil
		}
	}
	return nil, nil
}

func latestMatch(rules []Rule, match func(Rule) bool) *Rule {
	var best *Rule
	for i := range rules {
		if !match(rules[i]) {
			continue
		}
		if best == nil || newerRule(rules[i], *best) {
			best = &rules[i]
		}
	}
	if best == nil {
		return nil
	}
	chosen := *best
	return &chosen
}

func newerRule(a, b Rule) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
