package sqlstore

import (
	"context"
	"fmt"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/store"
)

// SeedSummary counts what Seed imported.
type SeedSummary struct {
	Templates    map[models.Section]int
	Constants    int
	Descriptions int
}

// Seed copies every template, constant and description from src.
func (s *Store) Seed(ctx context.Context, src store.TemplateStore) (SeedSummary, error) {
	summary := SeedSummary{Templates: map[models.Section]int{}}

	for _, section := range models.Sections {
		rows, err := src.LoadRowTemplates(ctx, section)
		if err != nil {
			return summary, fmt.Errorf("load %s templates: %w", section, err)
		}
		if err := s.ImportTemplates(ctx, section, rows); err != nil {
			return summary, err
		}
		summary.Templates[section] = len(rows)
	}

	constants, err := src.LoadGlobalConstants(ctx)
	if err != nil {
		return summary, fmt.Errorf("load constants: %w", err)
	}
	if err := s.ImportConstants(ctx, constants); err != nil {
		return summary, err
	}
	summary.Constants = len(constants)

	descriptions, err := src.LoadAccountDescriptions(ctx)
	if err != nil {
		return summary, fmt.Errorf("load descriptions: %w", err)
	}
	if err := s.ImportDescriptions(ctx, descriptions); err != nil {
		return summary, err
	}
	summary.Descriptions = len(descriptions)

	s.logger.Info("Seeded database",
		logging.F("rr", summary.Templates[models.SectionRR]),
		logging.F("br", summary.Templates[models.SectionBR]),
		logging.F("ink2", summary.Templates[models.SectionINK2]),
		logging.F("constants", summary.Constants),
		logging.F("descriptions", summary.Descriptions))
	return summary, nil
}
