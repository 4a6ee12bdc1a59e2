package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/MrJamesThe3rd/emicollect/internal/cloud"
	"github.com/MrJamesThe3rd/emicollect/internal/customer"
	"github.com/MrJamesThe3rd/emicollect/internal/loan"
)

//go:generate mockgen -source=service.go -destination=store_mock.go -package=backup
type Store interface {
	// Snapshot reads every record. Best-effort consistent; no lock is taken.
	Snapshot(ctx context.Context) ([]*customer.Customer, []*loan.Loan, []*loan.Payment, error)
	// Replace swaps the full record set in one transaction: delete payments,
	// loans, customers, then insert the given records in dependency order.
	// On error nothing has changed.
	Replace(ctx context.Context, customers []*customer.Customer, loans []*loan.Loan, payments []*loan.Payment) error
}

type Service struct {
	store Store
	cloud cloud.Storage // nil when no cloud account is configured
	dir   string
	now   func() time.Time
}

type Option func(*Service)

func WithCloud(storage cloud.Storage) Option {
	return func(s *Service) { s.cloud = storage }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, dir string, opts ...Option) *Service {
	s := &Service{
		store: store,
		dir:   dir,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateBackup serializes the full record set into one transfer document.
func (s *Service) CreateBackup(ctx context.Context) ([]byte, error) {
	customers, loans, payments, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	return NewDocument(customers, loans, payments, s.now()).Encode()
}

// RestoreBackup replaces all records with the snapshot's content. A
// malformed snapshot aborts before any write; a failed replace rolls back,
// so the pre-restore state is never partially overwritten.
func (s *Service) RestoreBackup(ctx context.Context, data []byte) error {
	doc, err := Decode(data)
	if err != nil {
		return err
	}

	customers, loans, payments, err := doc.Records()
	if err != nil {
		return err
	}

	if err := s.store.Replace(ctx, customers, loans, payments); err != nil {
		return fmt.Errorf("replacing records: %w", err)
	}

	return nil
}

// BackupToFile writes a backup document into the downloads directory and
// pushes a copy to the cloud when one is configured. Cloud trouble is
// logged and reported as a warning; the local file already succeeded.
func (s *Service) BackupToFile(ctx context.Context) (path string, warning string, err error) {
	data, err := s.CreateBackup(ctx)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating backup directory: %w", err)
	}

	name := fmt.Sprintf("emicollect_backup_%s.json", s.now().Format("20060102_150405"))
	path = filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("writing backup file: %w", err)
	}

	if warnErr := s.SyncToCloud(ctx, data); warnErr != nil {
		warning = warnErr.Error()
	}

	return path, warning, nil
}

// SyncToCloud uploads the document under the well-known name. Returns the
// error for reporting, but callers must treat it as non-fatal.
func (s *Service) SyncToCloud(ctx context.Context, data []byte) error {
	if s.cloud == nil {
		return nil
	}

	if err := s.cloud.Upload(ctx, cloud.BackupFilename, data); err != nil {
		slog.Warn("cloud backup sync failed", "error", err)
		return fmt.Errorf("cloud sync: %w", err)
	}

	return nil
}

// RestoreFromCloud pulls the latest cloud copy and restores it locally.
func (s *Service) RestoreFromCloud(ctx context.Context) error {
	if s.cloud == nil {
		return fmt.Errorf("no cloud storage configured")
	}

	data, err := s.cloud.Download(ctx, cloud.BackupFilename)
	if err != nil {
		return fmt.Errorf("fetching cloud backup: %w", err)
	}

	return s.RestoreBackup(ctx, data)
}
