package session

import (
	"time"

	"github.com/akz4ol/baselayer/internal/domain"
	"github.com/akz4ol/baselayer/internal/webhook"
)

func buildLeakAlert(table, mode string, principal domain.Principal, id, stack string) webhook.LeakAlert {
	return webhook.LeakAlert{
		Table:          table,
		Mode:           mode,
		PrincipalID:    principal.EffectiveUserID().String(),
		InaccessibleID: id,
		Stack:          stack,
		At:             time.Now(),
	}
}
