package services

import (
	"github.com/ghuser/chatmesh/pkg/app"
	"github.com/ghuser/chatmesh/services/user/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	User *UserService
}

// New wires all user application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewUserRepository(a.Db)
	return &Services{
		User: NewUserService(repo),
	}
}
