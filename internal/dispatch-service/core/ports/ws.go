package ports

import "ride-dispatch/internal/dispatch-service/core/domain/dto"

type INotifyWebsocket interface {
	WriteToUser(userID string, msg dto.Event)
}
