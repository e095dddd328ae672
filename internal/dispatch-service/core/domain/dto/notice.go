package dto

import "github.com/google/uuid"

// Notice is the envelope every published event travels in: the recipient
// user ids and an opaque payload. Consumers route on the topic, then fan the
// payload out to each listed user.
type Notice struct {
	UserReceiveNotice []uuid.UUID `json:"user_receive_notice"`
	Payload           any         `json:"payload"`
}
