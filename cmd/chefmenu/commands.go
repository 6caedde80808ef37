package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"chefmenu/internal/api"
	"chefmenu/internal/core"
	"chefmenu/internal/session"
	"chefmenu/internal/sheet"
	"chefmenu/pkg/domain"
)

const shutdownTimeout = 10 * time.Second

func cmdServe(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (default CHEFMENU_HTTP_ADDR)")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	cfg, err := env.config()
	if err != nil {
		return err
	}
	if err := cfg.Auth.RequireTokens(); err != nil {
		return err
	}
	gate, err := env.gate()
	if err != nil {
		return err
	}
	tokens, err := session.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := core.NewPrometheusMetrics(reg)
	if err != nil {
		return err
	}
	repo, err := env.repository(ctx, core.WithMetrics(metrics))
	if err != nil {
		return err
	}
	if _, err := repo.Initialize(ctx); err != nil {
		return err
	}

	listen := cfg.HTTP.Addr
	if *addr != "" {
		listen = *addr
	}
	srv := &http.Server{
		Addr: listen,
		Handler: api.NewRouter(api.Deps{
			Repo:           repo,
			Gate:           gate,
			Tokens:         tokens,
			Logger:         env.log,
			Gatherer:       reg,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	env.log.WithFields(logrus.Fields{"addr": listen, "driver": repo.Store().Driver()}).Info("serving dish API")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	env.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func cmdInit(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	if err := env.parse(fs, args); err != nil {
		return err
	}
	repo, err := env.repository(ctx)
	if err != nil {
		return err
	}
	dishes, err := repo.Initialize(ctx)
	if err != nil {
		return err
	}
	return printDishes(env, dishes)
}

func cmdList(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	course := fs.String("course", "", "only dishes of this course")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	repo, err := env.repository(ctx)
	if err != nil {
		return err
	}
	dishes, err := repo.List(ctx, *course)
	if err != nil {
		return err
	}
	return printDishes(env, dishes)
}

func cmdShow(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	id := fs.String("id", "", "dish id")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	repo, err := env.repository(ctx)
	if err != nil {
		return err
	}
	dish, err := repo.Get(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "ID:          %s\nName:        %s\nDescription: %s\nCourse:      %s\nPrice:       %s\n",
		dish.ID, dish.Name, dish.Description, dish.Course, dish.Price)
	return nil
}

type dishFlags struct {
	name, description, course, price *string
	user, password                   *string
}

func bindDishFlags(fs *flag.FlagSet) dishFlags {
	return dishFlags{
		name:        fs.String("name", "", "dish name"),
		description: fs.String("description", "", "dish description"),
		course:      fs.String("course", "", "course: Entrée, Appetizers, Mains, Sides or Desserts"),
		price:       fs.String("price", "", "price, e.g. 12.99"),
		user:        fs.String("user", "", "admin username"),
		password:    fs.String("password", "", "admin password"),
	}
}

func (f dishFlags) fields() domain.Fields {
	return domain.Fields{Name: *f.name, Description: *f.description, Course: *f.course, Price: *f.price}
}

func cmdAdd(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	f := bindDishFlags(fs)
	if err := env.parse(fs, args); err != nil {
		return err
	}
	if _, err := env.login(ctx, *f.user, *f.password); err != nil {
		return err
	}
	repo, err := env.repository(ctx)
	if err != nil {
		return err
	}
	created, _, err := repo.Create(ctx, f.fields())
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "added %s (%s)\n", created.Name, created.ID)
	return nil
}

func cmdUpdate(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	id := fs.String("id", "", "dish id")
	f := bindDishFlags(fs)
	if err := env.parse(fs, args); err != nil {
		return err
	}
	if _, err := env.login(ctx, *f.user, *f.password); err != nil {
		return err
	}
	repo, err := env.repository(ctx)
	if err != nil {
		return err
	}
	updated, _, err := repo.Update(ctx, *id, f.fields())
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "updated %s (%s)\n", updated.Name, updated.ID)
	return nil
}

func cmdRemove(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	id := fs.String("id", "", "dish id")
	user := fs.String("user", "", "admin username")
	password := fs.String("password", "", "admin password")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	if _, err := env.login(ctx, *user, *password); err != nil {
		return err
	}
	repo, err := env.repository(ctx)
	if err != nil {
		return err
	}
	dishes, err := repo.Remove(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "%d dishes remain\n", len(dishes))
	return nil
}

func cmdAverage(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("average", flag.ContinueOnError)
	course := fs.String("course", "", "only dishes of this course")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	repo, err := env.repository(ctx)
	if err != nil {
		return err
	}
	dishes, err := repo.List(ctx, *course)
	if err != nil {
		return err
	}
	avg, err := repo.AveragePrice(dishes)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.stdout, domain.FormatPrice(avg))
	return nil
}

func cmdImport(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	path := fs.String("file", "", "path to an .xlsx menu")
	user := fs.String("user", "", "admin username")
	password := fs.String("password", "", "admin password")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-file is required")
	}
	if _, err := env.login(ctx, *user, *password); err != nil {
		return err
	}
	repo, err := env.repository(ctx)
	if err != nil {
		return err
	}
	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	report, err := sheet.Import(ctx, repo, f)
	for _, re := range report.Rejected {
		fmt.Fprintf(env.stderr, "skipped %v\n", re)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "imported %d dishes, skipped %d rows\n", len(report.Created), len(report.Rejected))
	return nil
}

func cmdExport(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	path := fs.String("file", "", "destination .xlsx path")
	course := fs.String("course", "", "only dishes of this course")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-file is required")
	}
	repo, err := env.repository(ctx)
	if err != nil {
		return err
	}
	dishes, err := repo.List(ctx, *course)
	if err != nil {
		return err
	}
	f, err := os.Create(*path)
	if err != nil {
		return err
	}
	if err := sheet.Write(f, dishes); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "exported %d dishes to %s\n", len(dishes), *path)
	return nil
}

func cmdHashPassword(_ context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	password := fs.String("password", "", "password to hash")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	hash, err := session.HashPassword(*password)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.stdout, hash)
	return nil
}

func printDishes(env *cliEnv, dishes []domain.Dish) error {
	tw := tabwriter.NewWriter(env.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOURSE\tPRICE\tDESCRIPTION")
	for _, d := range dishes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Course, d.Price, d.Description)
	}
	return tw.Flush()
}
