package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Iam-Iftekhar/animerch/config"
	"github.com/Iam-Iftekhar/animerch/internal/app"
	"github.com/Iam-Iftekhar/animerch/internal/cart"
	"github.com/Iam-Iftekhar/animerch/internal/catalog"
	"github.com/Iam-Iftekhar/animerch/internal/identity"
	"github.com/Iam-Iftekhar/animerch/internal/order"
	"github.com/Iam-Iftekhar/animerch/internal/reporting"
	"github.com/Iam-Iftekhar/animerch/internal/webapi"
	"github.com/Iam-Iftekhar/animerch/internal/webserver"
	"github.com/Iam-Iftekhar/animerch/pkg/filestore"
)

var (
	h        bool
	showVer  bool
	initdb   bool
	conffile string
)

func init() {
	flag.BoolVar(&h, "h", false, "help usage")
	flag.BoolVar(&showVer, "v", false, "show version")
	flag.BoolVar(&initdb, "initdb", false, "drop and recreate all tables, then exit")
	flag.StringVar(&conffile, "c", "/etc/animerch.yml", "config file")
}

func printHelp() {
	if h {
		ustr := fmt.Sprintf("animerch version: %s, usage: animerch -h\nOptions:", app.Version)
		fmt.Fprintf(os.Stderr, "%s\n", ustr)
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()
	printHelp()

	if showVer {
		fmt.Println(app.Version)
		os.Exit(0)
	}

	_config := config.LoadConfig(conffile)

	application := app.NewApplication(_config)
	application.Init(_config)
	defer application.Release()

	if initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	db := application.DB()
	codec := identity.NewTokenCodec(_config.Jwt)
	identitySvc := identity.NewService(db, codec)
	catalogSvc := catalog.NewService(db)
	cartSvc := cart.NewService(db)
	orderSvc := order.NewService(db, application.Bus())
	reportingSvc := reporting.NewService(db)

	files, err := filestore.NewStore(_config.Web.UploadDir, "/static/uploads")
	if err != nil {
		zap.L().Fatal("init upload store error", zap.Error(err))
	}

	ws := webserver.New(_config, identitySvc)
	webapi.NewHandler(ws, identitySvc, catalogSvc, cartSvc, orderSvc, reportingSvc, files).Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ws.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), webserver.ShutdownTimeout)
		defer cancel()
		return ws.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("server exited", zap.Error(err))
	}
}
