package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradequest/models"
	"tradequest/observability"
)

// MarketDataService fetches simulated-market quotes from a CoinGecko-compatible API.
type MarketDataService struct {
	httpClient *http.Client
	baseURL    string
	vsCurrency string
}

// NewMarketDataService creates a new MarketDataService instance
func NewMarketDataService(baseURL string) *MarketDataService {
	return &MarketDataService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		vsCurrency: "usd",
	}
}

// marketsResponse represents one entry of the /coins/markets response
type marketsResponse struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	CurrentPrice  float64 `json:"current_price"`
	PriceChange24 float64 `json:"price_change_percentage_24h"`
}

// GetQuotes returns the latest quotes for the given asset IDs.
func (s *MarketDataService) GetQuotes(ctx context.Context, assetIDs []string) ([]models.Quote, error) {
	if len(assetIDs) == 0 {
		return []models.Quote{}, nil
	}

	quotes, err := WithCircuitBreaker(ctx, BreakerMarketData, func() ([]models.Quote, error) {
		var result []models.Quote

		retryErr := WithRetry(ctx, DefaultRetryConfig, func() error {
			timer := observability.GetMetrics().NewTimer()

			params := url.Values{}
			params.Set("vs_currency", s.vsCurrency)
			params.Set("ids", strings.Join(assetIDs, ","))

			req, err := http.NewRequestWithContext(ctx, http.MethodGet,
				s.baseURL+"/coins/markets?"+params.Encode(), nil)
			if err != nil {
				return fmt.Errorf("failed to build markets request: %w", err)
			}

			resp, err := s.httpClient.Do(req)
			if err != nil {
				observability.GetMetrics().RecordExternalAPIError("marketdata", "markets", "network")
				return fmt.Errorf("failed to fetch markets: %w", err)
			}
			defer resp.Body.Close()

			timer.ObserveExternalAPI("marketdata", "markets")

			if resp.StatusCode != http.StatusOK {
				observability.GetMetrics().RecordExternalAPIError("marketdata", "markets", fmt.Sprintf("http_%d", resp.StatusCode))
				return fmt.Errorf("markets request returned status %d", resp.StatusCode)
			}

			var entries []marketsResponse
			if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
				observability.GetMetrics().RecordExternalAPIError("marketdata", "markets", "decode")
				return fmt.Errorf("failed to decode markets response: %w", err)
			}

			result = make([]models.Quote, 0, len(entries))
			for _, entry := range entries {
				result = append(result, models.Quote{
					AssetID:   entry.ID,
					Symbol:    entry.Symbol,
					Name:      entry.Name,
					Price:     decimal.NewFromFloat(entry.CurrentPrice),
					Change24h: entry.PriceChange24,
					UpdatedAt: time.Now(),
				})
			}
			observability.GetMetrics().RecordExternalAPIRequest("marketdata", "markets")

			return nil
		})

		return result, retryErr
	})
	if err != nil {
		return nil, err
	}

	return quotes, nil
}

// GetQuote returns the latest quote for a single asset.
func (s *MarketDataService) GetQuote(ctx context.Context, assetID string) (*models.Quote, error) {
	quotes, err := s.GetQuotes(ctx, []string{assetID})
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		if quotes[i].AssetID == assetID {
			return &quotes[i], nil
		}
	}
	return nil, fmt.Errorf("no quote returned for asset %s", assetID)
}
