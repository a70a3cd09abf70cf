package templates

// Context holds the variables visible to a template.
type Context map[string]any

// Copy returns a shallow copy of c.
func (c Context) Copy() Context {
	out := make(Context, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// With returns a copy of c with key set to value. c itself is left as is.
func (c Context) With(key string, value any) Context {
	out := c.Copy()
	out[key] = value
	return out
}
