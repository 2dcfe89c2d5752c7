package session

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/akz4ol/baselayer/internal/access"
	"github.com/akz4ol/baselayer/internal/apperr"
	"github.com/akz4ol/baselayer/internal/audit"
)

// bulkVerify is the Go realization of spec.md §4.2's bulk verification:
// group rows by type, compile one accessible-ids query per type, and
// flag any row whose id does not appear among the accessible ones.
func (s *VerifiedSession) bulkVerify(mode access.Mode, rows []access.RowID) error {
	if len(rows) == 0 {
		return nil
	}

	grouped := make(map[string][]access.RowID)
	var order []string
	for _, row := range rows {
		table := row.Table()
		if _, ok := grouped[table]; !ok {
			order = append(order, table)
		}
		grouped[table] = append(grouped[table], row)
	}

	for _, table := range order {
		group := grouped[table]
		ids := make([]string, 0, len(group))
		seen := make(map[string]struct{}, len(group))
		for _, row := range group {
			id := row.RowID()
			if id == "" {
				continue // not yet assigned; nothing to verify against
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			continue
		}

		inaccessible, err := s.inaccessibleIDs(group[0], mode, ids)
		if err != nil {
			return err
		}
		if len(inaccessible) == 0 {
			continue
		}
		if err := s.handleInaccessible(table, string(mode), inaccessible); err != nil {
			return err
		}
	}
	return nil
}

// inaccessibleIDs compiles e's accessible-row query for mode and
// returns the subset of ids that query does not admit.
func (s *VerifiedSession) inaccessibleIDs(e access.Entity, mode access.Mode, ids []string) ([]string, error) {
	listSQL, args, err := access.CompileListQuery(s.reg, s.principal, e, mode)
	if err != nil {
		return nil, apperr.Internal("compile access query", err)
	}

	idsPlaceholder := fmt.Sprintf("$%d", len(args)+1)
	// pgx's database/sql driver encodes a Go []string argument as a
	// Postgres text[] literal, so unnest() can turn it back into rows
	// without a client-side round trip per id.
	args = append(args, ids)

	query := fmt.Sprintf(
		"SELECT cand.id FROM unnest(%s::text[]) AS cand(id) LEFT JOIN (%s) acc ON acc.id = cand.id WHERE acc.id IS NULL",
		idsPlaceholder, listSQL,
	)

	rows, err := s.db.QueryContext(s.ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal("run access verification query", err)
	}
	defer rows.Close()

	var inaccessible []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Internal("scan access verification row", err)
		}
		inaccessible = append(inaccessible, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate access verification rows", err)
	}
	return inaccessible, nil
}

// handleInaccessible applies the leak policy (spec.md §4.2) to a set
// of ids that failed bulk verification.
func (s *VerifiedSession) handleInaccessible(table, mode string, ids []string) error {
	msg := fmt.Sprintf("access denied: %d row(s) of %s inaccessible under mode %q", len(ids), table, mode)

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	s.recordDenials(ctx, table, mode, ids, s.security.Strict)

	if s.security.Strict {
		return apperr.Access(msg)
	}

	s.log.Warn().Str("table", table).Str("mode", mode).Strs("ids", ids).Msg("access leak (warn policy)")
	if s.security.SlackEnable && s.slack != nil && s.security.SlackURL != "" {
		stack := string(debug.Stack())
		for _, id := range ids {
			alert := buildLeakAlert(table, mode, s.principal, id, stack)
			if err := s.slack.SendLeakAlert(ctx, s.security.SlackURL, alert); err != nil {
				s.log.Error().Err(err).Msg("failed to post leak alert to slack")
			}
		}
	}
	// Warn policy still aborts the transaction (spec.md §4.2: "the
	// session still rolls back because the caller's commit() surfaces
	// the error"), it just doesn't raise AccessError to the handler.
	return apperr.Internal(msg, nil)
}

// recordDenials writes one audit row per inaccessible id. A down audit
// sink is logged and otherwise ignored — it must never change the
// access decision itself.
func (s *VerifiedSession) recordDenials(ctx context.Context, table, mode string, ids []string, strict bool) {
	for _, id := range ids {
		event := audit.Event{
			Table:          table,
			Mode:           mode,
			PrincipalID:    s.principal.EffectiveUserID().String(),
			InaccessibleID: id,
			Strict:         strict,
			At:             time.Now(),
		}
		if err := s.audit.RecordDenial(ctx, event); err != nil {
			s.log.Error().Err(err).Msg("failed to record access denial to audit sink")
		}
	}
}
