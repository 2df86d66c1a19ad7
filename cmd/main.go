package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/docgen"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/bunnyq"
	"github.com/sksmith/go-retail-ledger/api"
	"github.com/sksmith/go-retail-ledger/config"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/core/order"
	"github.com/sksmith/go-retail-ledger/core/stock"
	"github.com/sksmith/go-retail-ledger/core/user"
	"github.com/sksmith/go-retail-ledger/db"
	"github.com/sksmith/go-retail-ledger/db/catalogrepo"
	"github.com/sksmith/go-retail-ledger/db/orderrepo"
	"github.com/sksmith/go-retail-ledger/db/stockrepo"
	"github.com/sksmith/go-retail-ledger/db/usrrepo"
	"github.com/sksmith/go-retail-ledger/queue"

	"github.com/common-nighthawk/go-figure"
)

var routes = flag.Bool("routes", false, "generate router documentation")

func main() {
	ctx := context.Background()

	flag.Parse()
	cfg := config.Load()

	configLogging(cfg)
	printLogHeader(cfg)
	cfg.Print()

	dbPool := configDatabase(ctx, cfg)

	broker := queue.NewLevelBroker()
	q, bq := configQueue(cfg, broker)

	log.Info().Msg("creating catalog service...")
	catalogService := catalog.NewService(catalogrepo.NewPostgresRepo(dbPool))

	log.Info().Msg("creating stock service...")
	stockService := stock.NewService(stockrepo.NewPostgresRepo(dbPool), q)

	log.Info().Msg("creating order service...")
	orderService := order.NewService(orderrepo.NewPostgresRepo(dbPool), stockService, q)

	log.Info().Msg("creating user service...")
	userService := user.NewService(usrrepo.NewPostgresRepo(dbPool))

	log.Info().Msg("configuring metrics...")
	api.ConfigureMetrics()

	log.Info().Msg("configuring router...")
	r := api.ConfigureRouter(cfg, catalogService, stockService, orderService, broker, userService)

	if *routes {
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/sksmith/go-retail-ledger",
			Intro:       "Retail ledger REST API.",
		}))
		return
	}

	if bq != nil {
		log.Info().Msg("consuming products...")
		prodQueue := queue.NewProductQueue(bq, cfg.RabbitMQ.Product.Queue, cfg.RabbitMQ.Product.Dlt.Exchange)
		go prodQueue.ConsumeProducts(ctx, catalogService)
	}

	log.Info().Str("port", cfg.Port).Msg("listening")
	log.Fatal().Err(http.ListenAndServe(":"+cfg.Port, r)).Send()
}

func configQueue(cfg *config.Config, broker *queue.LevelBroker) (*queue.Fanout, *bunnyq.BunnyQ) {
	if cfg.RabbitMQ.Mock {
		log.Info().Msg("creating mock queue...")
		return queue.NewFanout(queue.NewMockQueue(), broker), nil
	}

	log.Info().Msg("connecting to rabbitmq...")
	bq := rabbit(cfg)
	return queue.NewFanout(queue.New(bq, cfg.RabbitMQ.Stock.Exchange, cfg.RabbitMQ.Sale.Exchange), broker), bq
}

func rabbit(cfg *config.Config) *bunnyq.BunnyQ {
	osChannel := make(chan os.Signal, 1)
	signal.Notify(osChannel, syscall.SIGTERM)

	return bunnyq.New(context.Background(),
		bunnyq.Address{
			User: cfg.RabbitMQ.User,
			Pass: cfg.RabbitMQ.Pass,
			Host: cfg.RabbitMQ.Host,
			Port: cfg.RabbitMQ.Port,
		},
		osChannel,
		bunnyq.LogHandler(logger{}),
	)
}

type logger struct {
}

func (l logger) Log(_ context.Context, level bunnyq.LogLevel, msg string, data map[string]interface{}) {
	var evt *zerolog.Event
	switch level {
	case bunnyq.LogLevelTrace:
		evt = log.Trace()
	case bunnyq.LogLevelDebug:
		evt = log.Debug()
	case bunnyq.LogLevelInfo:
		evt = log.Info()
	case bunnyq.LogLevelWarn:
		evt = log.Warn()
	case bunnyq.LogLevelError:
		evt = log.Error()
	default:
		evt = log.Info()
	}

	for k, v := range data {
		evt.Interface(k, v)
	}

	evt.Msg(msg)
}

func printLogHeader(cfg *config.Config) {
	if cfg.Log.Structured {
		log.Info().Str("application", cfg.AppName).
			Str("revision", cfg.Revision).
			Str("version", cfg.AppVersion).
			Str("sha1ver", cfg.Sha1Version).
			Str("build-time", cfg.BuildTime).
			Str("profile", cfg.Profile).
			Str("config-source", cfg.Config.Source).
			Send()
	} else {
		f := figure.NewFigure(cfg.AppName, "", true)
		f.Print()

		log.Info().Msg("=============================================")
		log.Info().Msg(fmt.Sprintf("       Revision: %s", cfg.Revision))
		log.Info().Msg(fmt.Sprintf("        Profile: %s", cfg.Profile))
		log.Info().Msg(fmt.Sprintf("  Config Source: %s", cfg.Config.Source))
		log.Info().Msg(fmt.Sprintf("    Tag Version: %s", cfg.AppVersion))
		log.Info().Msg(fmt.Sprintf("   Sha1 Version: %s", cfg.Sha1Version))
		log.Info().Msg(fmt.Sprintf("     Build Time: %s", cfg.BuildTime))
		log.Info().Msg("=============================================")
	}
}

func configDatabase(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	dbPool, err := db.ConnectDb(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to the database")
	}
	return dbPool
}

func configLogging(cfg *config.Config) {
	log.Info().Msg("configuring logging...")

	if !cfg.Log.Structured {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Str("loglevel", cfg.Log.Level).Err(err).Msg("defaulting to info")
		level = zerolog.InfoLevel
	}
	log.Info().Str("loglevel", level.String()).Msg("setting log level")
	zerolog.SetGlobalLevel(level)
}
