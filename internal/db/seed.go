package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Seed inserts demo data into the nexora database: a handful of active
// campaigns across platforms with a week of metric history. Demo use
// only; production metrics arrive through the ingest endpoint.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	platforms := []string{"meta", "google", "tiktok", "pinterest", "linkedin"}
	objectives := []string{"awareness", "traffic", "engagement", "leads", "sales"}

	for i := 1; i <= 5; i++ {
		id := uuid.NewString()
		name := fmt.Sprintf("Demo campaign %d", i)
		platform := platforms[(i-1)%len(platforms)]
		objective := objectives[r.Intn(len(objectives))]
		budget := decimal.NewFromInt(int64(50 + 50*i)) // 100.00 .. 300.00
		start := time.Now().AddDate(0, 0, -14)
		end := time.Now().AddDate(0, 1, 0)

		_, err := pool.Exec(ctx, `INSERT INTO campaigns
    (id, name, platform, status, objective, daily_budget, start_date, end_date, created_at, updated_at)
VALUES ($1,$2,$3,'active',$4,$5,$6,$7,now(),now()) ON CONFLICT DO NOTHING`,
			id, name, platform, objective, budget, start, end)
		if err != nil {
			return err
		}

		// a week of daily snapshots
		for d := 1; d <= 7; d++ {
			day := time.Now().UTC().AddDate(0, 0, -d)
			impressions := int64(5000 + r.Intn(20000))
			clicks := int64(float64(impressions) * (0.005 + r.Float64()*0.03))
			conversions := int64(float64(clicks) * (0.01 + r.Float64()*0.1))
			spend := decimal.NewFromFloat(float64(clicks) * (0.4 + r.Float64()*2.0)).Round(2)
			revenue := decimal.NewFromFloat(float64(conversions) * (10 + r.Float64()*40)).Round(2)

			_, err = pool.Exec(ctx, `INSERT INTO campaign_metrics
    (campaign_id, date, impressions, clicks, conversions, spend, revenue)
VALUES ($1,$2,$3,$4,$5,$6,$7) ON CONFLICT DO NOTHING`,
				id, day.Format("2006-01-02"), impressions, clicks, conversions, spend, revenue)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
