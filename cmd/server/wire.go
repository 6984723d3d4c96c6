// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"travel_agent_backend/internal/app"
	"travel_agent_backend/internal/auth"
	"travel_agent_backend/internal/backup"
	"travel_agent_backend/internal/chat"
	"travel_agent_backend/internal/config"
	"travel_agent_backend/internal/firebase"
	"travel_agent_backend/internal/health"
	"travel_agent_backend/internal/itinerary"
	"travel_agent_backend/internal/jobs"
	"travel_agent_backend/internal/migration"
	"travel_agent_backend/internal/platform/elasticsearch"
	"travel_agent_backend/internal/travelapi"
	"travel_agent_backend/internal/user"
)

var itinerarySet = wire.NewSet(
	elasticsearch.NewClient,
	itinerary.NewDocRepository,
	itinerary.NewIndexer,
	itinerary.NewService,
	wire.Bind(new(itinerary.Service), new(*itinerary.ServiceImplementation)),
)

var backupSet = wire.NewSet(
	provideBackupStorage,
	provideBackupService,
	wire.Bind(new(backup.Service), new(*backup.ServiceImplementation)),
)

// initializeServer is the main Wire injector.
func initializeServer(ctx context.Context, cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		provideLogger,
		provideFirebaseApp,
		provideStore,

		// Firebase Service
		firebase.NewAuthClient,
		firebase.NewFirebaseService,

		// Users
		user.NewDocRepository,
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		wire.Bind(new(user.AccountAdmin), new(*firebase.FirebaseService)),
		user.NewHandler,

		// Auth
		provideIdentityToolkit,
		wire.Bind(new(auth.IdentityProvider), new(*auth.IdentityToolkitClient)),
		auth.NewGoogleOAuth,
		wire.Bind(new(auth.UserProvisioner), new(*user.ServiceImplementation)),
		wire.Bind(new(auth.TokenRevoker), new(*firebase.FirebaseService)),
		auth.NewService,
		wire.Bind(new(auth.Service), new(*auth.ServiceImplementation)),
		auth.NewHandler,

		// Itineraries and chat
		itinerarySet,
		itinerary.NewHandler,
		chat.NewDocRepository,
		wire.Bind(new(chat.ItineraryLookup), new(*itinerary.ServiceImplementation)),
		chat.NewService,
		wire.Bind(new(chat.Service), new(*chat.ServiceImplementation)),
		chat.NewHandler,

		// Travel APIs
		travelapi.NewService,
		wire.Bind(new(travelapi.Service), new(*travelapi.ServiceImplementation)),
		travelapi.NewHandler,

		// Administration
		provideMigrationRunner,
		migration.NewHandler,
		backupSet,
		backup.NewHandler,
		jobs.NewBackupJob,
		health.NewHandler,

		// Application Layer
		wire.Struct(new(app.Handlers), "*"),
		app.NewServer,
	)
	return nil, nil, nil
}

// initializeTools builds the services the maintenance commands use, without the HTTP stack.
func initializeTools(ctx context.Context, cfg *config.Config) (*tools, func(), error) {
	wire.Build(
		provideLogger,
		provideOptionalFirebaseApp,
		provideStore,
		provideMigrationRunner,
		backupSet,
		itinerarySet,
		wire.Struct(new(tools), "*"),
	)
	return nil, nil, nil
}
