package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/emicollect/internal/cloud"
	"github.com/MrJamesThe3rd/emicollect/internal/customer"
	"github.com/MrJamesThe3rd/emicollect/internal/loan"
)

type fakeCloud struct {
	uploaded  map[string][]byte
	uploadErr error
	download  []byte
	getErr    error
}

func (f *fakeCloud) Upload(_ context.Context, name string, data []byte) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}

	if f.uploaded == nil {
		f.uploaded = make(map[string][]byte)
	}

	f.uploaded[name] = data

	return nil
}

func (f *fakeCloud) Download(_ context.Context, _ string) ([]byte, error) {
	return f.download, f.getErr
}

func TestService_CreateBackup(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	customers := []*customer.Customer{
		{ID: 1, Name: "Ravi", Frequency: customer.FrequencyWeekly, CreatedAt: time.UnixMilli(1700000000000).UTC()},
	}

	store.EXPECT().Snapshot(gomock.Any()).Return(customers, nil, nil, nil)

	at := time.Date(2024, 3, 4, 18, 30, 0, 0, time.UTC)
	svc := NewService(store, t.TempDir(), WithClock(func() time.Time { return at }))

	data, err := svc.CreateBackup(context.Background())
	require.NoError(t, err)

	doc, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), doc.Timestamp)
	require.Len(t, doc.Customers, 1)
	assert.Equal(t, "Ravi", doc.Customers[0].Name)
}

func TestService_RestoreBackup(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	svc := NewService(store, t.TempDir())

	customers := []*customer.Customer{
		{ID: 1, Name: "Ravi", Frequency: customer.FrequencyWeekly, CreatedAt: time.UnixMilli(0).UTC()},
	}
	loans := []*loan.Loan{
		{
			ID: 2, CustomerID: 1, ItemName: "Fan",
			TotalPrincipal: decimal.NewFromInt(1500), DownPayment: decimal.Zero,
			CurrentBalance: decimal.NewFromInt(1500), Frequency: loan.FrequencyWeekly,
			NextDueDate: time.UnixMilli(1700600000000).UTC(),
		},
	}

	data, err := NewDocument(customers, loans, nil, time.UnixMilli(0)).Encode()
	require.NoError(t, err)

	store.EXPECT().
		Replace(gomock.Any(), gomock.Len(1), gomock.Len(1), gomock.Len(0)).
		Return(nil)

	require.NoError(t, svc.RestoreBackup(context.Background(), data))
}

func TestService_RestoreBackup_MalformedLeavesStoreUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	svc := NewService(store, t.TempDir())

	// No Replace expectation: a malformed document must abort before any write.
	err := svc.RestoreBackup(context.Background(), []byte(`{"customers": [`))
	assert.ErrorIs(t, err, ErrMalformedBackup)
}

func TestService_RestoreBackup_ReplaceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	svc := NewService(store, t.TempDir())

	data, err := NewDocument(nil, nil, nil, time.UnixMilli(0)).Encode()
	require.NoError(t, err)

	store.EXPECT().
		Replace(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("disk full"))

	err = svc.RestoreBackup(context.Background(), data)
	assert.EqualError(t, err, "replacing records: disk full")
}

func TestService_BackupToFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	store.EXPECT().Snapshot(gomock.Any()).Return(nil, nil, nil, nil)

	at := time.Date(2024, 3, 4, 18, 30, 45, 0, time.UTC)
	dir := t.TempDir()
	storage := &fakeCloud{}
	svc := NewService(store, dir,
		WithCloud(storage),
		WithClock(func() time.Time { return at }),
	)

	path, warning, err := svc.BackupToFile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Equal(t, dir+"/emicollect_backup_20240304_183045.json", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = Decode(data)
	require.NoError(t, err)

	assert.Equal(t, data, storage.uploaded[cloud.BackupFilename])
}

func TestService_BackupToFile_CloudFailureIsAWarning(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	store.EXPECT().Snapshot(gomock.Any()).Return(nil, nil, nil, nil)

	dir := t.TempDir()
	svc := NewService(store, dir, WithCloud(&fakeCloud{uploadErr: fmt.Errorf("quota exceeded")}))

	path, warning, err := svc.BackupToFile(context.Background())
	require.NoError(t, err)
	assert.Contains(t, warning, "quota exceeded")

	// The local file landed despite the failed sync.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestService_BackupToFile_NoCloudConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	store.EXPECT().Snapshot(gomock.Any()).Return(nil, nil, nil, nil)

	svc := NewService(store, t.TempDir())

	_, warning, err := svc.BackupToFile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warning)
}

func TestService_RestoreFromCloud(t *testing.T) {
	data, err := NewDocument(nil, nil, nil, time.UnixMilli(0)).Encode()
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	store.EXPECT().
		Replace(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	svc := NewService(store, t.TempDir(), WithCloud(&fakeCloud{download: data}))

	require.NoError(t, svc.RestoreFromCloud(context.Background()))
}

func TestService_RestoreFromCloud_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	svc := NewService(store, t.TempDir(), WithCloud(&fakeCloud{getErr: cloud.ErrNotFound}))

	err := svc.RestoreFromCloud(context.Background())
	assert.ErrorIs(t, err, cloud.ErrNotFound)
}

func TestService_RestoreFromCloud_Unconfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewService(NewMockStore(ctrl), t.TempDir())

	assert.Error(t, svc.RestoreFromCloud(context.Background()))
}
