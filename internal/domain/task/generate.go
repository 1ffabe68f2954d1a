package task

import (
	"github.com/google/uuid"

	"solidus/sitemap/internal/domain"
)

const GenerateSitemapType = "GenerateSitemapTask"

// GenerateSitemapTask asks a worker to enumerate the storefront of Host.
type GenerateSitemapTask struct {
	RunID    string           `json:"run_id"`
	Host     string           `json:"host"`
	Sections []domain.Section `json:"sections"`
	Options  domain.Options   `json:"options,omitempty"` // Passed to every add_* call
}

func NewGenerateSitemapTask(host string, sections []domain.Section, opts domain.Options) *GenerateSitemapTask {
	return &GenerateSitemapTask{
		RunID:    uuid.NewString(),
		Host:     host,
		Sections: sections,
		Options:  opts,
	}
}

func (t *GenerateSitemapTask) TaskType() string {
	return GenerateSitemapType
}

func (t *GenerateSitemapTask) TaskValue() ([]byte, error) {
	return encode(t)
}
