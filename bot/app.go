// Package bot wires the Telegram surface of the puzzle bot: configuration,
// bootstrap, command and callback routing, and the daily broadcast.
package bot

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	corebootstrap "github.com/m3rciful/puzzlebot/core/bootstrap"
	corecmd "github.com/m3rciful/puzzlebot/core/cmd"
	coretelegram "github.com/m3rciful/puzzlebot/core/telegram"
	"github.com/m3rciful/puzzlebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/puzzlebot/core/telegram/helpers"
	"github.com/m3rciful/puzzlebot/core/telegram/router"
	"github.com/m3rciful/puzzlebot/core/telegram/state"
	"github.com/m3rciful/puzzlebot/llm"
	"github.com/m3rciful/puzzlebot/repository"
	"github.com/m3rciful/puzzlebot/scheduler"
	"github.com/m3rciful/puzzlebot/services/memory"
	"github.com/m3rciful/puzzlebot/services/puzzles"
	"github.com/m3rciful/puzzlebot/services/users"
)

// App holds the assembled application.
type App struct {
	cfg *Config
	db  *sqlx.DB

	usersSvc   *users.Service
	puzzlesSvc *puzzles.Service
	fsm        state.Manager
	handlers   *handlers

	broadcaster *scheduler.Broadcaster
	stopSched   context.CancelFunc
}

// LoadConfigCarrier adapts LoadConfig to the shared runner signature.
func LoadConfigCarrier(path string) (corecmd.ConfigCarrier, error) {
	return LoadConfig(path)
}

// Bootstrap initializes infrastructure and assembles the application.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected config type %T", carrier)
	}

	res, err := corebootstrap.Run(corebootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	usersRepo := repository.NewUsers(res.DB)
	logsRepo := repository.NewLogs(res.DB)
	solvedRepo := repository.NewSolvedTasks(res.DB)
	usersSvc := users.NewService(usersRepo, solvedRepo, logsRepo)

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}

	puzzlesSvc := puzzles.NewService(
		puzzles.NewRegistry(),
		memory.NewBuffer(cfg.Puzzle.ContextSize),
		client, client, client,
		usersSvc,
		logsRepo,
		solvedRepo,
	)

	fsm := state.NewMemoryManager()
	h := newHandlers(cfg, usersSvc, puzzlesSvc, fsm)

	return &App{
		cfg:        cfg,
		db:         res.DB,
		usersSvc:   usersSvc,
		puzzlesSvc: puzzlesSvc,
		fsm:        fsm,
		handlers:   h,
	}, nil
}

// TelegramRunOptions builds the routing table and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	if err := a.registerCallbacks(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(a.handlers.UnknownText())
	reg.SetCallbackNotFound(a.handlers.UnknownCallback())

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, textAdminOnly)
		},
	})
	routes = append(routes, router.TextRoutes(a.fsm, reg, router.TextOptions{
		UnknownText:     a.handlers.UnknownText(),
		UnknownDocument: a.handlers.UnknownDocument(),
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	mws := coretelegram.DefaultMiddlewares(&a.cfg.Core, func(c tele.Context) error {
		return tghelpers.SendText(c, textRateLimited)
	})
	mws = append(mws, coretelegram.Middleware{
		Name: "registration",
		Use:  a.handlers.registrationGate,
	})

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handlers.start,
		Description: "Register and open the main menu",
	})
	reg.RegisterCommand("/puzzle", commands.Command{
		Handler:     a.handlers.newPuzzle,
		Description: "Start a new puzzle",
		Aliases:     []string{btnNewPuzzle},
	})
	reg.RegisterCommand("/leaderboard", commands.Command{
		Handler:     a.handlers.leaderboard,
		Description: "Show the top players",
		Aliases:     []string{btnLeaderboard},
	})
	reg.RegisterCommand("/profile", commands.Command{
		Handler:     a.handlers.profile,
		Description: "Show your rating and stats",
		Aliases:     []string{btnProfile},
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handlers.help,
		Description: "List available commands",
	})
	reg.RegisterCommand("/broadcast", commands.Command{
		Handler:     a.adminBroadcast,
		Description: "Send the daily reminder to everyone now",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) error {
	regs := map[string]tele.HandlerFunc{
		cbCategory:   a.handlers.categorySelected,
		cbDifficulty: a.handlers.difficultySelected,
		cbHint:       a.handlers.hintRequested,
		cbCancel:     a.handlers.cancelPuzzle,
		cbNewPuzzle:  a.handlers.newPuzzle,
		cbFeedback:   a.handlers.feedbackRequested,
	}
	for key, handler := range regs {
		if err := reg.RegisterCallback(key, handler); err != nil {
			return err
		}
	}
	return nil
}

// adminBroadcast fires the reminder broadcast on demand.
func (a *App) adminBroadcast(c tele.Context) error {
	if a.broadcaster == nil {
		return tghelpers.SendText(c, "Broadcasts are not available yet.")
	}
	ctx := tghelpers.BuildContext(c)
	total, notified := a.broadcaster.Broadcast(ctx)
	return tghelpers.SendText(c, fmt.Sprintf(textBroadcastDone, notified, total))
}

func (a *App) onStart(_ context.Context, rt coretelegram.Runtime) error {
	b, err := scheduler.NewBroadcaster(a.cfg.Scheduler, a.usersSvc, &botNotifier{bot: rt.Bot}, textDailyReminder)
	if err != nil {
		return err
	}
	a.broadcaster = b

	ctx, cancel := context.WithCancel(context.Background())
	a.stopSched = cancel
	go b.Run(ctx)
	return nil
}

func (a *App) onStop(_ context.Context, _ coretelegram.Runtime) error {
	if a.stopSched != nil {
		a.stopSched()
	}
	return a.db.Close()
}
