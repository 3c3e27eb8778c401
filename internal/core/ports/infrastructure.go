package ports

import (
	"context"
	"io"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// BlobMetadata is stored alongside every uploaded object.
type BlobMetadata struct {
	ContentType  string
	OriginalName string
	OwnerID      string
}

// BlobStore is the binary object store.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, meta BlobMetadata) error
	DownloadURL(path string) string
	// Delete returns domain.ErrFileNotFound when nothing is stored at path.
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string, limit int) ([]domain.StoredFile, error)
	Open(ctx context.Context, path string) (io.ReadCloser, *domain.StoredFile, error)
}

// NetworkSwitch toggles a store client between remote and cache-only mode.
type NetworkSwitch interface {
	EnableNetwork(ctx context.Context) error
	DisableNetwork(ctx context.Context) error
}

// ConnectivityProbe checks whether the backing services are reachable.
type ConnectivityProbe interface {
	Ping(ctx context.Context) error
}

// Connectivity exposes the process-wide online flag.
type Connectivity interface {
	IsOnline() bool
}

// DocumentCache backs offline reads. Get returns domain.ErrCacheMiss when
// the key is absent.
type DocumentCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// ApplicationGuard serializes concurrent submissions for one (job, applicant)
// pair. Acquire reports false when another submission holds the pair.
type ApplicationGuard interface {
	Acquire(ctx context.Context, jobID, applicantID string) (bool, error)
	Release(ctx context.Context, jobID, applicantID string) error
}

// Notifier delivers domain notifications.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// SideEffect is a best-effort follow-up. Effects with the same Key run in
// enqueue order.
type SideEffect struct {
	Key  string
	Name string
	Run  func(ctx context.Context) error
}

// SideEffectRunner schedules best-effort follow-ups.
type SideEffectRunner interface {
	Enqueue(effect SideEffect)
}
