package services

import (
	"github.com/ghuser/chatmesh/pkg/app"
	"github.com/ghuser/chatmesh/pkg/messaging"
	domainevents "github.com/ghuser/chatmesh/services/auth/domain/events"
	"github.com/ghuser/chatmesh/services/auth/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Auth *AuthService
}

// New wires all auth application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	accounts := postgres.NewAccountRepository(a.Db)
	tokens := postgres.NewRefreshTokenRepository(a.Db)
	publisher := messaging.NewPublisher(a.Broker, domainevents.ExchangeAuthEvents, a.Logger)
	return &Services{
		Auth: NewAuthService(accounts, tokens, a.Tokens, publisher, a.Logger),
	}
}
