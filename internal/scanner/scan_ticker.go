package scanner

import (
	"context"
	"math"
	"sort"

	"github.com/moddonthemix-lab/lemonshortbot/internal/analysis"
	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
	"github.com/moddonthemix-lab/lemonshortbot/internal/patterns"
	"github.com/moddonthemix-lab/lemonshortbot/internal/scoring"
)

// scanTicker runs the full per-symbol pipeline: history, pattern, multi-
// timeframe confirmation, quote, news, options flow, scoring, contract
// quality. Returns nil when the symbol cannot be analyzed; partial upstream
// failures degrade individual components instead.
func (sc *Scanner) scanTicker(ctx context.Context, req Request, in TickerInput, adjustments map[string]int) *Candidate {
	ctx, cancel := context.WithTimeout(ctx, sc.config.TickerTimeout)
	defer cancel()

	logger := sc.logger.With().Str("ticker", in.Ticker).Logger()

	bars, err := sc.provider.FetchBars(ctx, in.Ticker, marketdata.Period3mo, marketdata.Interval1d)
	if err != nil || len(bars) < 2 {
		logger.Debug().Err(err).Msg("no usable price history, skipping")
		return nil
	}

	dailyChange := analysis.DailyChange(bars)
	volume := analysis.AnalyzeVolume(bars)
	var volumeRatio float64
	if volume != nil {
		volumeRatio = volume.VolumeRatio
	}

	matched, pattern := sc.detector.CheckPattern(bars)
	if !matched {
		_, pattern = sc.detector.DetectMomentum(bars)
	}

	mtf := sc.mtf.Analyze(ctx, in.Ticker)

	currentPrice := bars[len(bars)-1].Close
	company := in.Company
	var quote *marketdata.Quote
	if quote, err = sc.provider.FetchQuote(ctx, in.Ticker); err == nil {
		if quote.Last > 0 {
			currentPrice = quote.Last
		}
		if company == "" {
			company = quote.Company
		}
		if sc.scans != nil {
			if cacheErr := sc.scans.SetQuote(ctx, in.Ticker, quote); cacheErr != nil {
				logger.Debug().Err(cacheErr).Msg("quote not shared")
			}
		}
	} else {
		logger.Debug().Err(err).Msg("quote unavailable, using last close")
	}

	sentiment := analysis.NeutralS
	if news, err := sc.provider.FetchNews(ctx, in.Ticker, 10); err == nil {
		sentiment = analysis.ScoreNews(news)
	}

	optionType := directionToOptionType(pattern.Direction, dailyChange)

	flow := analysis.OptionsFlow{}
	var contract *marketdata.OptionContract
	chain, chainErr := sc.provider.FetchOptionsChain(ctx, in.Ticker)
	if chainErr == nil && chain != nil {
		flow = sc.flow.Analyze(currentPrice, optionType, chain)
		contract = selectContract(currentPrice, optionType, chain)
	} else {
		logger.Debug().Err(chainErr).Msg("options chain unavailable")
	}

	var riskScore float64
	if req.Source == SourceSqueeze {
		daysToCover := 0.0
		floatShares := 0.0
		if quote != nil {
			floatShares = quote.FloatShares
			if volume != nil && volume.AverageVolume > 0 && floatShares > 0 {
				daysToCover = floatShares * in.ShortInterest / 100 / volume.AverageVolume
			}
		}
		riskScore = analysis.RiskScore(analysis.SqueezeInputs{
			ShortInterest: in.ShortInterest,
			DailyChange:   dailyChange,
			VolumeRatio:   volumeRatio,
			DaysToCover:   daysToCover,
			FloatShares:   floatShares,
		})
	}

	confidence, reasoning := sc.scorer.Score(scoring.Candidate{
		Symbol:      in.Ticker,
		Pattern:     pattern,
		RiskScore:   riskScore,
		DailyChange: dailyChange,
		VolumeRatio: volumeRatio,
		Sentiment:   sentiment,
		MTF:         mtf,
		Flow:        flow,
		Adjustment:  adjustments[string(pattern.Kind)],
	})

	quality := scoring.CheckContractQuality(contract)
	confidence = scoring.ApplyQuality(confidence, quality)

	strike := currentPrice
	if contract != nil {
		strike = contract.Strike
	}

	candidate := &Candidate{
		Ticker:           in.Ticker,
		Company:          company,
		OptionType:       optionType,
		StrikePrice:      strike,
		CurrentPrice:     currentPrice,
		DailyChange:      dailyChange,
		VolumeRatio:      volumeRatio,
		ShortInterest:    in.ShortInterest,
		RiskScore:        riskScore,
		Confidence:       confidence,
		Pattern:          pattern,
		Sentiment:        sentiment,
		MTF:              mtf,
		Flow:             flow,
		Contract:         contract,
		Quality:          quality,
		Reasoning:        reasoning,
		ExpirationWindow: req.ExpirationWindow,
		PassedFilters:    passesCriteria(req, in, dailyChange, volumeRatio, riskScore),
	}

	logger.Debug().Int("confidence", confidence).
		Str("pattern", string(pattern.Kind)).
		Str("option_type", string(optionType)).
		Msg("ticker scored")

	return candidate
}

// passesCriteria applies the squeeze filters. Daily-plays scans accept
// everything that scored.
func passesCriteria(req Request, in TickerInput, dailyChange, volumeRatio, riskScore float64) bool {
	if req.Source != SourceSqueeze {
		return true
	}
	c := req.Criteria
	if in.ShortInterest < c.MinShortInterest {
		return false
	}
	if dailyChange < c.MinDailyChange {
		return false
	}
	if volumeRatio < c.MinVolumeRatio {
		return false
	}
	return riskScore >= c.MinRiskScore
}

// directionToOptionType maps a pattern direction to the contract side.
// Without a directional read, the day's move decides.
func directionToOptionType(direction patterns.Direction, dailyChange float64) analysis.OptionType {
	switch direction {
	case patterns.Bullish:
		return analysis.Call
	case patterns.Bearish:
		return analysis.Put
	}
	if dailyChange < 0 {
		return analysis.Put
	}
	return analysis.Call
}

// selectContract picks the nearest out-of-the-money strike on the chosen
// side. Returns nil when the side is empty or has no OTM strikes.
func selectContract(currentPrice float64, optionType analysis.OptionType, chain *marketdata.OptionsChain) *marketdata.OptionContract {
	side := chain.Calls
	if optionType == analysis.Put {
		side = chain.Puts
	}

	otm := make([]marketdata.OptionContract, 0, len(side))
	for _, c := range side {
		if optionType == analysis.Call && c.Strike > currentPrice {
			otm = append(otm, c)
		}
		if optionType == analysis.Put && c.Strike < currentPrice {
			otm = append(otm, c)
		}
	}
	if len(otm) == 0 {
		return nil
	}

	sort.Slice(otm, func(i, j int) bool {
		return math.Abs(otm[i].Strike-currentPrice) < math.Abs(otm[j].Strike-currentPrice)
	})
	chosen := otm[0]
	return &chosen
}
