package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tutor-mailer/config"
	"tutor-mailer/database"
	"tutor-mailer/errlog"
	"tutor-mailer/handlers"
	"tutor-mailer/services"
	"tutor-mailer/utils"
)

const usage = `usage: tutor-mailer [-env path] <command> [flags]

commands:
  serve                         run the HTTP API
  listen                        serve one trigger request over TCP
  remind -sessions file.csv     email reminders for sessions on or before yesterday
  remind -from-db               same, reading the sessions table
  send -name N -to ADDR -subject S
`

func main() {
	envPath := flag.String("env", "", "path to the .env file (default: next to the executable)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*envPath, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(envPath, command string, args []string) error {
	// Load configuration from .env
	cfg, err := config.LoadConfig(envPath)
	if err != nil {
		var cfgErr *errlog.Error
		if errors.As(err, &cfgErr) {
			path := os.Getenv("ERROR_LOG")
			if path == "" {
				path = errlog.DefaultPath()
			}
			_ = errlog.NewSink(path).Record(cfgErr)
		}
		return err
	}

	logger, err := utils.NewLogger(cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	opts := []services.Option{
		services.WithErrorSink(errlog.NewSink(cfg.ErrorLogPath)),
		services.WithLogger(logger),
	}
	if db != nil {
		opts = append(opts, services.WithEmailLogger(database.NewEmailLogRepository(db)))
	}
	mailer := services.NewMailService(cfg, opts...)
	reminders := services.NewReminderService(mailer, logger)

	switch command {
	case "serve":
		return serve(ctx, cfg, handlers.Deps{Sender: mailer, Reminders: reminders, DB: db, Logger: logger}, logger)
	case "listen":
		return listen(ctx, cfg, mailer, logger)
	case "remind":
		return remind(ctx, args, db, reminders)
	case "send":
		return send(ctx, args, mailer)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func openDB(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, send attempts will not be recorded")
		return nil, nil
	}

	// Initialize database connection
	db, err := database.InitDB(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := database.ApplyMigrations(cfg.DatabaseURL, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("error applying database migrations: %w", err)
	}
	return db, nil
}

func serve(ctx context.Context, cfg *config.Config, deps handlers.Deps, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func listen(ctx context.Context, cfg *config.Config, sender services.Sender, logger *zap.Logger) error {
	l, err := handlers.ListenTrigger(cfg.TriggerAddr, sender, logger)
	if err != nil {
		return err
	}
	fmt.Println("Server listening on", l.Addr())
	return l.ServeOnce(ctx)
}

func remind(ctx context.Context, args []string, db *sql.DB, reminders *services.ReminderService) error {
	fs := flag.NewFlagSet("remind", flag.ContinueOnError)
	sessionsPath := fs.String("sessions", "", "CSV file with name,email,session_date,present_date")
	fromDB := fs.Bool("from-db", false, "read sessions from the database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var sessions []database.Session
	var err error
	switch {
	case *fromDB:
		if db == nil {
			return errors.New("-from-db requires DATABASE_URL")
		}
		sessions, err = database.NewSessionRepository(db).ListSessions(ctx)
	case *sessionsPath != "":
		sessions, err = database.LoadSessionsFile(*sessionsPath)
	default:
		return errors.New("remind needs -sessions or -from-db")
	}
	if err != nil {
		return err
	}

	return reminders.SendReminders(ctx, sessions)
}

func send(ctx context.Context, args []string, sender services.Sender) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	name := fs.String("name", "", "recipient name")
	to := fs.String("to", "", "recipient email")
	subject := fs.String("subject", "", "subject line")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *to == "" || *subject == "" {
		return errors.New("send needs -name, -to and -subject")
	}
	return sender.SendEmail(ctx, *name, *to, *subject)
}
