package registry

import "github.com/terry-ai/terry/internal/config"

// FromConfig builds a validated registry from the models configuration
// section.
func FromConfig(cfg config.ModelsConfig) (*Registry, error) {
	return New(fromConfigList(cfg.Text), fromConfigList(cfg.Image))
}

func fromConfigList(models []config.ModelConfig) []Model {
	out := make([]Model, 0, len(models))
	for _, m := range models {
		out = append(out, Model{
			ID:          m.ID,
			Provider:    m.Provider,
			DisplayName: m.DisplayName,
			Vision:      m.Vision,
		})
	}
	return out
}
