package notifying

import (
	"context"

	"github.com/toastdai/googleadsdashboard/internal/domain"
)

// Notifier entrega um alerta em um canal externo. A entrega precisa ser
// idempotente do lado do canal: um alerta pode ser reentregue quando outro
// canal da mesma rodada falhar.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, alert *domain.Alert) error
}
