package schema

// Collector accumulates the issues of one subtree. Composite nodes own a
// Collector per call and merge child issues into it with a path prefix, so
// sibling subtrees never share state.
type Collector struct {
	issues []Issue
}

// Add appends issues located at the collector's own path.
func (c *Collector) Add(issues ...Issue) {
	c.issues = append(c.issues, issues...)
}

// Merge appends child issues, prefixing their paths with seg.
func (c *Collector) Merge(seg any, issues []Issue) {
	for _, issue := range issues {
		c.issues = append(c.issues, issue.withPrefix(seg))
	}
}

// Len returns the number of collected issues.
func (c *Collector) Len() int { return len(c.issues) }

// Issues returns the collected issues in the order they were recorded.
func (c *Collector) Issues() []Issue { return c.issues }

// Err returns the collected issues as a *ValidationError, or nil when
// nothing was recorded.
func (c *Collector) Err() *ValidationError {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}
