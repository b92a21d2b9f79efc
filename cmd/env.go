package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-api/internal/analytics"
	"github.com/sells-group/valuation-api/internal/comps"
	"github.com/sells-group/valuation-api/internal/store"
	"github.com/sells-group/valuation-api/internal/valuation"
	sfpkg "github.com/sells-group/valuation-api/pkg/salesforce"
)

// serviceEnv holds the initialized store, comps source, and calculator shared
// by the serve/calc/leads/backfill commands.
type serviceEnv struct {
	Store store.Store
	Comps *comps.PGSource // may be nil
	Calc  *valuation.Calculator
}

// Close releases resources held by the environment.
func (e *serviceEnv) Close() {
	if e.Comps != nil {
		e.Comps.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates config for the given mode, opens the store, runs
// migrations, and builds the calculator. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*serviceEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	opts := []valuation.Option{
		valuation.WithSink(analytics.NewLogSink(zap.L())),
	}

	if cfg.Valuation.TablesPath != "" {
		overrides, err := loadMultiplierOverrides(cfg.Valuation.TablesPath)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		opts = append(opts, valuation.WithMultiplierOverrides(overrides))
		zap.L().Info("multiplier overrides loaded",
			zap.String("path", cfg.Valuation.TablesPath),
			zap.Int("categories", len(overrides)),
		)
	}

	var compsSource *comps.PGSource
	if cfg.Comps.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.Comps.DatabaseURL)
		if err != nil {
			zap.L().Warn("comps database unavailable, using static tables only", zap.Error(err))
		} else {
			compsSource = comps.NewPGSource(pool)
			opts = append(opts,
				valuation.WithCompsSource(compsSource),
				valuation.WithCompsTimeout(time.Duration(cfg.Comps.TimeoutSecs)*time.Second),
			)
			zap.L().Info("comparable sales source enabled")
		}
	}

	return &serviceEnv{
		Store: st,
		Comps: compsSource,
		Calc:  valuation.NewCalculator(opts...),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "valuation.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func loadMultiplierOverrides(path string) (map[valuation.Category]valuation.MultiplierPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open multiplier overrides")
	}
	defer f.Close()

	return valuation.LoadMultiplierOverrides(f)
}

// initSalesforce builds the CRM client when credentials are configured,
// returning nil when lead sync should stay local.
func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, nil
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(5)), nil
}
