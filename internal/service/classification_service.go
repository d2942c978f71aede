package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
	"github.com/nattapongd/Fund-Compare-Backend/internal/repository"
	"github.com/nattapongd/Fund-Compare-Backend/internal/sec"
)

// hedgeKeywordPatterns maps AIMC category phrases to FX hedge flags.
// Ordered longest phrase first: "Discretionary F/X Hedge or Unhedge" must
// classify as Mixed and never fall through to the shorter "Unhedge" rule.
var hedgeKeywordPatterns = []struct {
	phrase string
	flag   model.HedgeFlag
}{
	{"Discretionary F/X Hedge or Unhedge", model.HedgeFlagMixed},
	{"Discretionary F/X Hedge", model.HedgeFlagMixed},
	{"Fully FX Risk Hedge", model.HedgeFlagHedged},
	{"Fully F/X Hedge", model.HedgeFlagHedged},
	{"Unhedge", model.HedgeFlagUnhedged},
}

// distributionPolicyMapping maps the SEC API dividend_policy indicator to
// the stored distribution policy code.
var distributionPolicyMapping = map[string]model.DistributionPolicy{
	"Y": model.DistributionDividend,     // pays dividends
	"N": model.DistributionAccumulation, // accumulating
}

// defaultPeerCurrency is used whenever the upstream currency lookup fails,
// returns nothing, or returns a purely numeric code (a known upstream data
// defect). Most Thai funds trade in THB.
const defaultPeerCurrency = "THB"

// classifyBatchConcurrency bounds parallel upstream lookups during a full
// classification pass.
const classifyBatchConcurrency = 4

// ClassificationService computes and persists the peer classification
// projection on fund records: peer focus, currency, FX hedge flag,
// distribution policy, the composite peer key, and the fallback level.
type ClassificationService struct {
	fundRepo  *repository.FundRepository
	secClient sec.Client
}

// NewClassificationService creates a new ClassificationService.
func NewClassificationService(fundRepo *repository.FundRepository, secClient sec.Client) *ClassificationService {
	return &ClassificationService{
		fundRepo:  fundRepo,
		secClient: secClient,
	}
}

// ClassificationSummary aggregates the outcome of a full classification pass.
type ClassificationSummary struct {
	TotalFunds           int                              `json:"total_funds"`
	Processed            int                              `json:"processed"`
	Successful           int                              `json:"successful"`
	Failed               int                              `json:"failed"`
	WithPeerKey          int                              `json:"with_peer_key"`
	FallbackLevels       map[int]int                      `json:"fallback_levels"`
	HedgeFlags           map[model.HedgeFlag]int          `json:"hedge_flags"`
	DistributionPolicies map[model.DistributionPolicy]int `json:"distribution_policies"`
	Currencies           map[string]int                   `json:"currencies"`
}

// ClassifyFund computes the peer classification fields for a single fund,
// sets them on the given record, and persists them.
//
// Upstream lookup failures (currency, dividend policy) degrade to the
// documented defaults and never fail the classification; only persistence
// errors are returned.
func (s *ClassificationService) ClassifyFund(ctx context.Context, fund *model.Fund) error {
	fund.PeerFocus = s.computePeerFocus(fund)

	currency := s.computePeerCurrency(fund.ProjID, fund.FundAbbr)
	fund.PeerCurrency = &currency

	fund.PeerFXHedgedFlag = s.computeFXHedgedFlag(fund.AimcCategory)
	fund.PeerDistributionPolicy = s.computeDistributionPolicy(fund.ProjID, fund.FundAbbr)

	fund.PeerKey = buildPeerKey(
		fund.AimcCategory,
		fund.PeerFocus,
		fund.PeerCurrency,
		fund.PeerFXHedgedFlag,
		fund.PeerDistributionPolicy,
	)
	fund.PeerKeyFallbackLevel = fallbackLevel(
		fund.PeerDistributionPolicy,
		fund.PeerFXHedgedFlag,
		fund.PeerCurrency,
	)

	if err := s.fundRepo.UpdatePeerClassification(ctx, *fund); err != nil {
		return fmt.Errorf("failed to persist classification for %s: %w", fund.Identifier(), err)
	}

	return nil
}

// ClassifyAllFunds runs the classification pass over all active funds.
// Upstream lookups run with bounded concurrency; a single fund's failure is
// counted and logged but never aborts the pass. The pass is idempotent:
// re-running it with unchanged inputs leaves every fund row unchanged.
func (s *ClassificationService) ClassifyAllFunds(ctx context.Context) (ClassificationSummary, error) {
	summary := ClassificationSummary{
		FallbackLevels:       map[int]int{},
		HedgeFlags:           map[model.HedgeFlag]int{},
		DistributionPolicies: map[model.DistributionPolicy]int{},
		Currencies:           map[string]int{},
	}

	funds, err := s.fundRepo.GetActiveFunds()
	if err != nil {
		return summary, fmt.Errorf("failed to load funds for classification: %w", err)
	}
	summary.TotalFunds = len(funds)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(classifyBatchConcurrency)

	for i := range funds {
		fund := &funds[i]
		g.Go(func() error {
			err := s.ClassifyFund(ctx, fund)

			mu.Lock()
			defer mu.Unlock()

			summary.Processed++
			if err != nil {
				summary.Failed++
				log.Printf("classification failed for %s: %v", fund.Identifier(), err)
				return nil
			}

			summary.Successful++
			if fund.PeerKey != nil {
				summary.WithPeerKey++
				summary.FallbackLevels[fund.PeerKeyFallbackLevel]++
				summary.HedgeFlags[fund.PeerFXHedgedFlag]++
				if fund.PeerDistributionPolicy != nil {
					summary.DistributionPolicies[*fund.PeerDistributionPolicy]++
				}
				if fund.PeerCurrency != nil {
					summary.Currencies[*fund.PeerCurrency]++
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	log.Printf("peer classification complete: %d funds, %d with peer key, %d failed",
		summary.TotalFunds, summary.WithPeerKey, summary.Failed)

	return summary, nil
}

// computePeerFocus copies the AIMC category verbatim; nil propagates.
func (s *ClassificationService) computePeerFocus(fund *model.Fund) *string {
	return fund.AimcCategory
}

// computePeerCurrency resolves the fund's currency from the SEC investment
// constraints. Any failure, absence, or numeric currency code (an upstream
// data defect) degrades to THB. Never empty.
func (s *ClassificationService) computePeerCurrency(projID, fundAbbr string) string {
	list, err := s.secClient.FetchInvestment(projID)
	if err != nil {
		log.Printf("currency lookup failed for %s, defaulting to %s: %v", projID, defaultPeerCurrency, err)
		return defaultPeerCurrency
	}

	info, ok := sec.PickInvestment(fundAbbr, list)
	if !ok {
		return defaultPeerCurrency
	}

	currency := info.MinimumSubCur
	if currency == "" {
		currency = info.MinimumRedemptCur
	}
	if currency == "" {
		return defaultPeerCurrency
	}
	if isNumeric(currency) {
		return defaultPeerCurrency
	}

	return strings.ToUpper(currency)
}

// computeFXHedgedFlag derives the hedge flag from the AIMC category name
// via the ordered phrase table. No match, or a missing category, yields
// Unknown.
func (s *ClassificationService) computeFXHedgedFlag(aimcCategory *string) model.HedgeFlag {
	if aimcCategory == nil || *aimcCategory == "" {
		return model.HedgeFlagUnknown
	}

	for _, pattern := range hedgeKeywordPatterns {
		if strings.Contains(*aimcCategory, pattern.phrase) {
			return pattern.flag
		}
	}

	return model.HedgeFlagUnknown
}

// computeDistributionPolicy resolves the dividend policy from the SEC
// dividend endpoint. Failures and unmapped indicators yield nil.
func (s *ClassificationService) computeDistributionPolicy(projID, fundAbbr string) *model.DistributionPolicy {
	list, err := s.secClient.FetchDividend(projID)
	if err != nil {
		log.Printf("dividend policy lookup failed for %s: %v", projID, err)
		return nil
	}

	info, ok := sec.PickDividend(fundAbbr, list)
	if !ok || info.DividendPolicy == "" {
		return nil
	}

	policy, ok := distributionPolicyMapping[strings.ToUpper(info.DividendPolicy)]
	if !ok {
		return nil
	}
	return &policy
}

// buildPeerKey assembles the composite peer key
// AIMC_CATEGORY|FOCUS|CURRENCY|HEDGE|DIST. The key is nil iff the AIMC
// category is missing; optional components render as empty segments so the
// pipe count is constant.
func buildPeerKey(
	aimcCategory *string,
	peerFocus *string,
	peerCurrency *string,
	hedgeFlag model.HedgeFlag,
	distPolicy *model.DistributionPolicy,
) *string {
	if aimcCategory == nil || *aimcCategory == "" {
		return nil
	}

	focus := ""
	if peerFocus != nil {
		focus = *peerFocus
	}
	currency := ""
	if peerCurrency != nil {
		currency = *peerCurrency
	}
	dist := ""
	if distPolicy != nil {
		dist = string(*distPolicy)
	}

	key := strings.Join([]string{*aimcCategory, focus, currency, string(hedgeFlag), dist}, "|")
	return &key
}

// fallbackLevel reports how degraded the peer key is: 0 when distribution,
// hedge and currency are all present, 1 without distribution, 2 without a
// known hedge flag, 3 without currency. Currency always defaults to THB, so
// level 3 is effectively unreachable today; the branch is kept as headroom
// for a stricter currency-resolution policy.
func fallbackLevel(
	distPolicy *model.DistributionPolicy,
	hedgeFlag model.HedgeFlag,
	peerCurrency *string,
) int {
	if distPolicy == nil {
		return 1
	}
	if hedgeFlag == "" || hedgeFlag == model.HedgeFlagUnknown {
		return 2
	}
	if peerCurrency == nil || *peerCurrency == "" {
		return 3
	}
	return 0
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
