package services

import (
	"context"
	"errors"
	"log"

	"mindboost/models"

	"golang.org/x/sync/errgroup"
)

var gameTypes = []string{
	models.GameMatching,
	models.GameNumberRecall,
	models.GameObjectSequencing,
	models.GameStroopTest,
}

// Refresh reconciles the current identity on demand. Unlike the background
// run triggered by auth transitions, the error is returned to the caller.
func (s *ProgressService) Refresh(ctx context.Context) error {
	return s.reconcileFor(ctx, s.CurrentIdentity())
}

// reconcileFor replaces the in-memory collections with the remote view for
// userID. Each record kind reconciles independently: a failed fetch retains
// that kind's existing state instead of partially merging. Every replace is
// guarded against staleness — if the identity changed while a fetch was in
// flight, its result is discarded.
func (s *ProgressService) reconcileFor(ctx context.Context, userID string) error {
	if userID == models.AnonymousUserID || userID == "" {
		return nil // nothing remote to merge; cached state stands
	}

	errs := []error{
		s.reconcileGameScores(ctx, userID),
		s.reconcileWaterLogs(ctx, userID),
		s.reconcileMeditations(ctx, userID),
		s.reconcileMusicTracks(ctx, userID),
	}
	err := errors.Join(errs...)
	if err != nil {
		EmitSyncEvent(userID, ReconcileFailed, "", err)
	} else {
		EmitSyncEvent(userID, ReconcileOK, "", nil)
	}
	return err
}

// reconcileGameScores issues one select per game variant in parallel and
// joins them. Any failure aborts the whole replace — a partial view mixing
// fresh and stale variants is worse than keeping what we have.
func (s *ProgressService) reconcileGameScores(ctx context.Context, userID string) error {
	results := make([][]models.GameScoreRecord, len(gameTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, gt := range gameTypes {
		i, gt := i, gt
		g.Go(func() error {
			rows, err := s.gw.SelectRecords(gctx, TableGameScores, RecordFilter{UserID: userID, GameType: gt})
			if err != nil {
				return err
			}
			recs := make([]models.GameScoreRecord, 0, len(rows))
			for _, row := range rows {
				rec, ok := models.DecodeGameScoreRow(row)
				if !ok {
					log.Printf("reconcile: dropping malformed %s row", gt)
					continue
				}
				recs = append(recs, rec)
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Per-variant fetch order is preserved; no cross-variant sort.
	var fetched []models.GameScoreRecord
	for _, recs := range results {
		fetched = append(fetched, recs...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != userID {
		return nil // stale response, a newer identity owns the view now
	}
	merged := make([]models.GameScoreRecord, 0, len(fetched))
	for _, r := range s.gameScores {
		if r.UserID == models.AnonymousUserID {
			merged = append(merged, r)
		}
	}
	s.gameScores = append(merged, fetched...)
	return nil
}

func (s *ProgressService) reconcileWaterLogs(ctx context.Context, userID string) error {
	rows, err := s.gw.SelectRecords(ctx, TableWaterLogs, RecordFilter{UserID: userID})
	if err != nil {
		return err
	}
	fetched := make([]models.WaterLogRecord, 0, len(rows))
	for _, row := range rows {
		fetched = append(fetched, models.DecodeWaterLogRow(row))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != userID {
		return nil
	}
	merged := make([]models.WaterLogRecord, 0, len(fetched))
	for _, r := range s.waterLogs {
		if r.UserID == models.AnonymousUserID {
			merged = append(merged, r)
		}
	}
	s.waterLogs = append(merged, fetched...)
	return nil
}

func (s *ProgressService) reconcileMeditations(ctx context.Context, userID string) error {
	rows, err := s.gw.SelectRecords(ctx, TableMeditationSessions, RecordFilter{UserID: userID})
	if err != nil {
		return err
	}
	fetched := make([]models.MeditationSessionRecord, 0, len(rows))
	for _, row := range rows {
		fetched = append(fetched, models.DecodeMeditationSessionRow(row))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != userID {
		return nil
	}
	merged := make([]models.MeditationSessionRecord, 0, len(fetched))
	for _, r := range s.meditations {
		if r.UserID == models.AnonymousUserID {
			merged = append(merged, r)
		}
	}
	s.meditations = append(merged, fetched...)
	return nil
}

// reconcileMusicTracks fetches the whole catalog — built-ins plus every
// user's uploads. Ownership filtering happens at read time, not here.
// Bundled built-ins and anonymous uploads that only exist locally survive
// the replace.
func (s *ProgressService) reconcileMusicTracks(ctx context.Context, userID string) error {
	rows, err := s.gw.SelectRecords(ctx, TableMusicTracks, RecordFilter{})
	if err != nil {
		return err
	}
	fetched := make([]models.MusicTrackRecord, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		rec, ok := models.DecodeMusicTrackRow(row)
		if !ok {
			log.Printf("reconcile: dropping malformed music track row")
			continue
		}
		fetched = append(fetched, rec)
		seen[rec.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != userID {
		return nil
	}
	var merged []models.MusicTrackRecord
	for _, t := range s.musicTracks {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		if t.IsBuiltIn || t.UserID == models.AnonymousUserID {
			merged = append(merged, t)
		}
	}
	s.musicTracks = append(merged, fetched...)
	return nil
}
