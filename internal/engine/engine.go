// Package engine assembles every chart of one birth moment into a bundle.
package engine

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bigfamingjia/ai-fortune-teller/internal/bazi"
	"github.com/bigfamingjia/ai-fortune-teller/internal/calendar"
	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/qimen"
	"github.com/bigfamingjia/ai-fortune-teller/internal/solartime"
	"github.com/bigfamingjia/ai-fortune-teller/internal/ziwei"
)

// ChartBundle is the immutable result of one request. Qimen is nil unless
// it was asked for.
type ChartBundle struct {
	Request domain.BirthRequest `json:"request"`
	Moment  solartime.Moment    `json:"moment"`
	Date    calendar.Date       `json:"date"`
	Bazi    bazi.Chart          `json:"bazi"`
	Ziwei   ziwei.Chart         `json:"ziwei"`
	Qimen   *qimen.Chart        `json:"qimen,omitempty"`
	Almanac calendar.Almanac    `json:"almanac"`
}

// Assemble merges builder outputs. It computes nothing.
func Assemble(req domain.BirthRequest, m solartime.Moment, d calendar.Date, b bazi.Chart, z ziwei.Chart, q *qimen.Chart, a calendar.Almanac) ChartBundle {
	return ChartBundle{
		Request: req,
		Moment:  m,
		Date:    d,
		Bazi:    b,
		Ziwei:   z,
		Qimen:   q,
		Almanac: a,
	}
}

// ComputeChart runs the whole pipeline for one request. Errors are the
// typed errors of package domain, returned as is.
func ComputeChart(req domain.BirthRequest) (ChartBundle, error) {
	start := time.Now()

	// 1. Validation; resolved defaults are echoed back in the bundle
	bm, err := req.Validate()
	if err != nil {
		return ChartBundle{}, err
	}
	req.Options = bm.Options

	// 2. Solar Time and Calendar Date
	m, err := solartime.Correct(bm)
	if err != nil {
		return ChartBundle{}, err
	}
	d, err := calendar.Convert(m, bm.Options.DayBoundary)
	if err != nil {
		return ChartBundle{}, err
	}

	// 3. Charts
	b := bazi.Build(m, d, bm.Gender)
	z, err := ziwei.Build(d)
	if err != nil {
		return ChartBundle{}, err
	}

	var q *qimen.Chart
	if req.WantQimen {
		c, err := qimen.Build(m, d, bm.Options.QimenMethod)
		if err != nil {
			return ChartBundle{}, err
		}
		q = &c
	}

	bundle := Assemble(req, m, d, b, z, q, calendar.AlmanacFor(d))

	slog.Debug(config.MsgChartComputed,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCivil, req.Civil.String(),
		config.LogKeySolar, m.Solar.Format(config.LayoutDisplay),
		config.LogKeyPillars, pillarString(d),
		config.LogKeyQimen, req.WantQimen,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return bundle, nil
}

// pillarString joins the four pillars for logging, e.g. "乙亥 己丑 辛酉 癸巳".
func pillarString(d calendar.Date) string {
	p := d.Pillars()
	return p[0].String() + " " + p[1].String() + " " + p[2].String() + " " + p[3].String()
}

// Result is the outcome of one request of a batch.
type Result struct {
	Bundle ChartBundle
	Err    error
}

// ComputeBatch computes independent requests concurrently. A rejected
// request only fails its own Result; the batch fails only when ctx is
// cancelled, in which case every result is discarded.
func ComputeBatch(ctx context.Context, reqs []domain.BirthRequest) ([]Result, error) {
	log := slog.With(config.LogKeyComponent, config.CompEngine)
	log.DebugContext(ctx, config.MsgBatchStarted, config.LogKeyTotal, len(reqs))

	results := make([]Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.MaxBatchParallel)

	for i, req := range reqs {
		g.Go(func() error {
			// Only cancellation aborts the group; chart errors stay in the Result.
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := ComputeChart(req)
			results[i] = Result{Bundle: b, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.DebugContext(ctx, config.MsgBatchDone,
		config.LogKeyTotal, len(reqs),
		config.LogKeyFailed, failed,
	)
	return results, nil
}
