package service

import (
	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
	"github.com/nattapongd/Fund-Compare-Backend/internal/repository"
)

// FundService handles fund lookup operations.
type FundService struct {
	fundRepo *repository.FundRepository
}

// NewFundService creates a new FundService.
func NewFundService(fundRepo *repository.FundRepository) *FundService {
	return &FundService{fundRepo: fundRepo}
}

// ListFunds returns summaries of all funds with their AMC names.
func (s *FundService) ListFunds() ([]model.FundSummary, error) {
	return s.fundRepo.ListFundSummaries()
}

// GetFund resolves a fund by identifier, matching class abbreviations
// first and project IDs second.
func (s *FundService) GetFund(identifier string) (model.Fund, error) {
	return s.fundRepo.GetFundByIdentifier(identifier)
}
