package services

import (
	"github.com/ghuser/chatmesh/pkg/app"
	pkgcache "github.com/ghuser/chatmesh/pkg/cache"
	"github.com/ghuser/chatmesh/services/chat/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Conversations *ConversationService
	Messages      *MessageService
}

// New wires all chat application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	users := postgres.NewChatUserRepository(a.Db)
	conversations := postgres.NewConversationRepository(a.Db)
	messages := postgres.NewMessageRepository(a.Db)

	var convCache *pkgcache.ConversationCache
	if a.Redis != nil {
		convCache = pkgcache.NewConversationCache(a.Redis)
	}

	convSvc := NewConversationService(conversations, users, convCache, a.Logger)
	return &Services{
		Conversations: convSvc,
		Messages:      NewMessageService(messages, convSvc),
	}
}
