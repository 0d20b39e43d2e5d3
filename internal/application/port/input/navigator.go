package input

import (
	"context"

	"voice-browser/internal/domain/entity"
)

type Navigator interface {
	// Respond runs one turn against the session. It never returns an error;
	// failures become apology text.
	Respond(ctx context.Context, session *entity.Session, utterance string) entity.Turn
	// Open starts a session from either a URL or a natural-language site request.
	Open(ctx context.Context, session *entity.Session, request string) entity.Turn
}
