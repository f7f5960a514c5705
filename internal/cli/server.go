package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"careerpath-service/internal/app"
	"careerpath-service/internal/catalog"
	"careerpath-service/internal/config"
	"careerpath-service/internal/infra/memory"
	"careerpath-service/internal/infra/mentor"
	"careerpath-service/internal/infra/postgres"
	redisinfra "careerpath-service/internal/infra/redis"
	"careerpath-service/internal/logger"
	transport "careerpath-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the REST and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "port to listen on, overrides config and PORT")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not configured (set JWT_SECRET)")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := buildDeps(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialise dependencies")
		return err
	}
	defer deps.close()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	topN := cfg.Quiz.TopN
	if topN <= 0 {
		topN = app.DefaultTopN
	}

	router := transport.NewRouter(transport.RouterConfig{
		Quizzes:        deps.quizzes,
		Teams:          deps.teams,
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DefaultTopN:    topN,
		Log:            log,
	})

	// No write timeout: websocket connections outlive any single response.
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}
	grace := config.TTLDuration(cfg.Server.ShutdownGrace, 10*time.Second)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("store", deps.store).Str("cache", deps.cache).Msg("starting careerpath service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type runtimeDeps struct {
	quizzes *app.QuizService
	teams   *app.TeamService
	store   string
	cache   string
	closers []func()
}

func (d *runtimeDeps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildDeps picks postgres and redis adapters when they are configured and
// falls back to in-memory ones otherwise.
func buildDeps(ctx context.Context, cfg config.Config, log zerolog.Logger) (*runtimeDeps, error) {
	engine, err := catalog.NewEngine()
	if err != nil {
		return nil, err
	}
	d := &runtimeDeps{store: "memory", cache: "memory"}

	var (
		loader    memory.QuizLoader    = memory.NewStaticQuizLoader(catalog.Quizzes())
		teamStore app.TeamStore        = memory.NewTeamStore()
		results   app.ResultRepository = memory.NewResultStore()
	)
	if cfg.Postgres.URL != "" {
		db := postgres.OpenBun(cfg.Postgres.URL)
		d.closers = append(d.closers, func() { _ = db.Close() })
		group, err := postgres.Migrate(ctx, db)
		if err != nil {
			d.close()
			return nil, err
		}
		if !group.IsZero() {
			log.Info().Str("group", group.String()).Msg("migrations applied")
		}

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.close()
			return nil, err
		}
		d.closers = append(d.closers, pool.Close)

		pgLoader := postgres.NewQuizLoader(pool)
		if err := seedQuizzes(ctx, pgLoader, log); err != nil {
			d.close()
			return nil, err
		}
		loader = pgLoader
		teamStore = postgres.NewTeamStore(pool)
		results = postgres.NewResultStore(db)
		d.store = "postgres"
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	attemptTTL := config.TTLDuration(cfg.Quiz.AttemptTTL, 24*time.Hour)
	var (
		quizRepo app.QuizRepository
		attempts app.AttemptRepository
		events   app.EventBus
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.closers = append(d.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			d.close()
			return nil, err
		}
		quizRepo = redisinfra.NewQuizRepository(client, loader, quizTTL, log)
		attempts = redisinfra.NewAttemptStore(client, attemptTTL)
		events = redisinfra.NewEventBus(client, 32, log)
		d.cache = "redis"
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
		attempts = memory.NewAttemptStore(attemptTTL)
		events = memory.NewEventHub(32)
	}

	var generator app.TextGenerator
	if cfg.Mentor.URL != "" {
		timeout := config.TTLDuration(cfg.Mentor.Timeout, 20*time.Second)
		generator = mentor.NewClient(cfg.Mentor.URL, cfg.Mentor.APIKey, cfg.Mentor.Model, timeout)
	} else {
		log.Warn().Msg("mentor url not configured; AI-assisted scoring disabled")
	}

	d.quizzes = app.NewQuizService(engine, quizRepo, attempts, results, generator, log)
	d.teams = app.NewTeamService(teamStore, events, log)
	return d, nil
}

// seedQuizzes writes the built-in question banks to postgres.
func seedQuizzes(ctx context.Context, loader *postgres.QuizLoader, log zerolog.Logger) error {
	for id, quiz := range catalog.Quizzes() {
		if err := loader.Upsert(ctx, quiz); err != nil {
			return err
		}
		log.Debug().Str("quiz_id", id).Msg("quiz seeded")
	}
	return nil
}
