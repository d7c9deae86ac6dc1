package app

import (
	"github.com/famcal/famcal/internal/auth"
	"github.com/famcal/famcal/internal/config"
	"github.com/famcal/famcal/internal/database"
	"github.com/famcal/famcal/internal/event_bus"
	"github.com/famcal/famcal/internal/live"
	"github.com/famcal/famcal/pkg/event"
	"github.com/famcal/famcal/pkg/group"
	"github.com/famcal/famcal/pkg/invitation"
	"github.com/famcal/famcal/pkg/mail"
	"github.com/famcal/famcal/pkg/scope"
	"github.com/famcal/famcal/pkg/stats"
	"github.com/famcal/famcal/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	AuthTokenValidator *auth.TokenValidator
	EventBus           *event_bus.EventBus

	UserService *user.ServiceImpl
	UserHandler *user.Handler

	GroupService *group.ServiceImpl
	GroupHandler *group.Handler

	ScopeService *scope.ServiceImpl
	ScopeHandler *scope.Handler

	Mailer      *mail.Mailer
	MailHandler *mail.Handler

	InvitationService *invitation.ServiceImpl
	InvitationHandler *invitation.Handler

	EventService event.EventService
	EventHandler *event.EventHandler

	StatsService     *stats.StatsServiceImpl
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler

	LiveHub         *live.Hub
	LiveBroadcaster *live.Broadcaster
	LiveHandler     *live.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db database.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.AuthTokenValidator = auth.NewTokenValidator(cfg.Auth.JwtSecret)
	deps.EventBus = event_bus.NewEventBus()

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.GroupService = group.NewService(group.NewRepository(db), deps.UserService, deps.EventBus)
	deps.GroupHandler = group.NewHandler(deps.GroupService)

	deps.ScopeService = scope.NewService(scope.NewRepository(db), deps.GroupService, deps.UserService)
	deps.ScopeHandler = scope.NewHandler(deps.ScopeService)

	deps.Mailer = mail.NewMailer(cfg.Mail)
	deps.MailHandler = mail.NewHandler(deps.Mailer)

	deps.InvitationService = invitation.NewService(invitation.NewRepository(db), deps.GroupService, deps.UserService,
		deps.Mailer, deps.EventBus, cfg.Host)
	deps.InvitationHandler = invitation.NewHandler(deps.InvitationService)

	deps.EventService = event.NewEventService(event.NewEventRepo(db), deps.ScopeService, deps.GroupService, deps.EventBus)
	deps.EventHandler = event.NewEventHandler(deps.EventService)

	deps.StatsService = stats.NewStatsServiceImpl(deps.EventService)
	deps.CsvStatsRenderer = stats.NewCsvStatsTransformer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer)

	deps.LiveHub = live.NewHub()
	deps.LiveBroadcaster = live.NewBroadcaster(deps.LiveHub, deps.GroupService)
	deps.LiveBroadcaster.Subscribe(deps.EventBus)
	deps.LiveHandler = live.NewHandler(deps.LiveHub, cfg.Cors.AllowedOrigins)

	return deps
}
