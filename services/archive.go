package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/storage"
)

const archiveTimeout = 10 * time.Second

// ArchiveKey is the object key under which a tournament's final results are stored.
func ArchiveKey(tournamentID int) string {
	return fmt.Sprintf("tournaments/%d/results.json", tournamentID)
}

type archiveDocument struct {
	Tournament *models.Tournament         `json:"tournament"`
	Results    []*models.TournamentResult `json:"results"`
	ArchivedAt time.Time                  `json:"archived_at"`
}

type resultArchiver struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

// archive uploads the final classification. Failures are logged and otherwise ignored.
func (a *resultArchiver) archive(ctx context.Context, t *models.Tournament, results []*models.TournamentResult) {
	if a == nil || a.uploader == nil {
		return
	}
	body, err := json.Marshal(archiveDocument{Tournament: t, Results: results, ArchivedAt: time.Now().UTC()})
	if err != nil {
		a.logger.Error("failed to encode results archive", slog.Int("tournament_id", t.ID), slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	res, err := a.uploader.Upload(ctx, ArchiveKey(t.ID), "application/json", bytes.NewReader(body))
	switch {
	case errors.Is(err, storage.ErrUploaderDisabled):
		a.logger.Debug("results archive skipped, storage disabled", slog.Int("tournament_id", t.ID))
	case err != nil:
		a.logger.Warn("failed to upload results archive", slog.Int("tournament_id", t.ID), slog.Any("error", err))
	default:
		a.logger.Info("results archived", slog.Int("tournament_id", t.ID), slog.String("location", res.Location))
	}
}

// remove deletes a tournament's archive, if any. Failures are logged and otherwise ignored.
func (a *resultArchiver) remove(ctx context.Context, tournamentID int) {
	if a == nil || a.uploader == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	if err := a.uploader.Delete(ctx, ArchiveKey(tournamentID)); err != nil && !errors.Is(err, storage.ErrUploaderDisabled) {
		a.logger.Warn("failed to delete results archive", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
}
