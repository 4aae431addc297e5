package ofx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
)

// importNamespace scopes imported operation ids.
var importNamespace = uuid.MustParse("6f1c2a8e-4b7d-5e3a-9c0f-2d8b7e6a1f43")

const saveBatchSize = 50

// Key identifies the entry within its account. Banks that omit FITID get a
// digest of the visible fields instead.
func (e Entry) Key() string {
	if e.FITID != "" {
		return e.FITID
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s",
		e.Account, e.PostedAt.UTC().Format(time.RFC3339), e.Amount.String(), e.Payee)))
	return "h" + hex.EncodeToString(sum[:8])
}

// OperationID returns the stable id of an imported entry, so importing the
// same statement twice is a no-op.
func OperationID(wallet, key string) string {
	return uuid.NewSHA1(importNamespace, []byte(model.WalletKey(wallet)+"|"+key)).String()
}

// ImportResult summarizes an import.
type ImportResult struct {
	Parsed     int
	Imported   int
	Duplicates int
	Skipped    int
}

// Importer saves statement entries into a wallet.
type Importer struct {
	storage  service.Storage
	progress io.Writer
	now      func() time.Time
}

// NewImporter creates an importer. A nil progress writer disables the bar.
func NewImporter(storage service.Storage, progress io.Writer) *Importer {
	return &Importer{
		storage:  storage,
		progress: progress,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Import stores entries as operations in wallet. Entries already imported
// and zero-amount entries are skipped. Currencies the ledger does not
// support fall back to fallback.
func (im *Importer) Import(ctx context.Context, wallet string, entries []Entry, fallback model.Currency) (*ImportResult, error) {
	name, err := im.resolveWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Parsed: len(entries)}
	now := im.now()
	seen := make(map[string]bool, len(entries))
	var pending []model.Operation

	for _, entry := range entries {
		if entry.Amount.IsZero() {
			result.Skipped++
			continue
		}
		op := entry.ToOperation(name, fallback, now)
		if seen[op.ID] {
			result.Duplicates++
			continue
		}
		seen[op.ID] = true

		_, err := im.storage.GetOperationByID(ctx, op.ID)
		switch {
		case err == nil:
			result.Duplicates++
			continue
		case !errors.Is(err, common.ErrNotFound):
			return nil, fmt.Errorf("failed to check operation %s: %w", op.ID, err)
		}
		pending = append(pending, op)
	}

	bar := im.newProgressBar(len(pending))
	for start := 0; start < len(pending); start += saveBatchSize {
		end := min(start+saveBatchSize, len(pending))
		if err := im.storage.SaveOperations(ctx, pending[start:end]); err != nil {
			return result, fmt.Errorf("failed to save imported operations: %w", err)
		}
		result.Imported += end - start
		if bar != nil {
			if err := bar.Add(end - start); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	common.LogInfo("Imported statement", common.Fields{
		"wallet":     name,
		"parsed":     result.Parsed,
		"imported":   result.Imported,
		"duplicates": result.Duplicates,
		"skipped":    result.Skipped,
	})

	return result, nil
}

func (im *Importer) resolveWallet(ctx context.Context, wallet string) (string, error) {
	wallets, err := im.storage.GetWallets(ctx, false)
	if err != nil {
		return "", fmt.Errorf("failed to load wallets: %w", err)
	}
	for _, w := range wallets {
		if model.SameWallet(w.Name, wallet) {
			return w.Name, nil
		}
	}
	return "", common.NewUserError(fmt.Sprintf("wallet %q does not exist", wallet), common.ErrNotFound)
}

func (im *Importer) newProgressBar(total int) *progressbar.ProgressBar {
	if im.progress == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(im.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Importing operations...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(im.progress); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
