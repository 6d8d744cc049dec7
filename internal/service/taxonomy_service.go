package service

import (
	"context"

	"friendmarket/internal/repository"
)

// TaxonomyService exposes the tag and city lookups.
type TaxonomyService struct {
	repo repository.TaxonomyRepository
}

func NewTaxonomyService(repo repository.TaxonomyRepository) *TaxonomyService {
	return &TaxonomyService{repo: repo}
}

func (s *TaxonomyService) Tags(ctx context.Context) ([]string, error) {
	return s.repo.TagNames(ctx)
}

func (s *TaxonomyService) Cities(ctx context.Context) ([]string, error) {
	return s.repo.CityNames(ctx)
}
