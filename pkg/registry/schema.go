// pkg/registry/schema.go
package registry

type TemplateRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Templates   []Template `json:"templates"`
}

type Template struct {
	Type     string   `json:"type"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Channels []string `json:"channels"`
}

// ByType indexes the registry for handler lookup at startup.
func (r *TemplateRegistry) ByType() map[string]Template {
	index := make(map[string]Template, len(r.Templates))
	for _, t := range r.Templates {
		index[t.Type] = t
	}
	return index
}
